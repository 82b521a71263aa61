package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/ipsae/ipsae"
)

const structure = `ATOM      1  CA  ALA A   1       0.000   0.000   0.000  1.00 90.00           C
ATOM      2  CA  GLY A   2       1.000   0.000   0.000  1.00 90.00           C
ATOM      3  CA  SER A   3       2.000   0.000   0.000  1.00 90.00           C
ATOM      4  CA  LYS B   1       0.000   0.000   5.000  1.00 90.00           C
ATOM      5  CA  LEU B   2       1.000   0.000   5.000  1.00 90.00           C
END
`

const paeDoc = `{"pae": [
	[0, 10, 10, 10, 10],
	[10, 0, 10, 10, 10],
	[10, 10, 0, 10, 10],
	[10, 10, 10, 0, 10],
	[10, 10, 10, 10, 0]
]}`

func write(t *testing.T, dir, name, content string) string {
	fileName := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0o644))
	return fileName
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ds, err := Load(
		write(t, dir, "model.pdb", structure),
		write(t, dir, "model.json", paeDoc), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, []string{"A", "B"}, ds.ChainIDs())
	require.NotNil(t, ds.PAE)
	assert.Equal(t, 10.0, ds.PAE.At(0, 4))

	rs, err := ipsae.NewScorer(ipsae.Cutoffs{PAE: 30, Distance: 8}, nil).Run(ds)
	require.NoError(t, err)
	require.Len(t, rs.ChainPairs, 1)
	assert.Equal(t, 6, rs.ChainPairs[0].NumInteractions)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	pdbFile := write(t, dir, "model.pdb", structure)
	paeFile := write(t, dir, "model.json", paeDoc)

	tests := []struct {
		name      string
		structure string
		pae       string
		kind      error
	}{
		{"structure extension", write(t, dir, "model.xyz", structure),
			paeFile, ipsae.ErrUnsupportedFormat},
		{"pae extension", pdbFile,
			write(t, dir, "model.pkl", "x"), ipsae.ErrUnsupportedFormat},
		{"no extension", pdbFile,
			write(t, dir, "scores", paeDoc), ipsae.ErrUnsupportedFormat},
		{"missing key", pdbFile,
			write(t, dir, "plddt.json", `{"plddt": [1]}`), ipsae.ErrMissingData},
		{"wrong size", pdbFile,
			write(t, dir, "small.json", `{"pae": [[0, 1], [1, 0]]}`), ipsae.ErrShape},
		{"empty structure", write(t, dir, "empty.pdb", "END\n"),
			paeFile, ipsae.ErrMissingData},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ds, err := Load(test.structure, test.pae, nil)
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, test.kind)
		})
	}
}

func TestLoadShapeErrorNamesPAEFile(t *testing.T) {
	dir := t.TempDir()
	paeFile := write(t, dir, "small.json", `{"pae": [[0]]}`)
	_, err := Load(write(t, dir, "model.pdb", structure), paeFile, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), paeFile)
}

func TestExt(t *testing.T) {
	tests := map[string]string{
		"model.pdb":                   ".pdb",
		"MODEL.PDB":                   ".pdb",
		"model.cif.gz":                ".cif",
		"run_scores_rank_001.json.gz": ".json",
		"/some/dir.v2/scores":         "",
		"x_model_1_seed_000.npz":      ".npz",
	}
	for fileName, want := range tests {
		assert.Equal(t, want, Ext(fileName), fileName)
	}
}

func TestReadStructure(t *testing.T) {
	dir := t.TempDir()
	entry, err := ReadStructure(write(t, dir, "model.pdb", structure))
	require.NoError(t, err)
	require.Len(t, entry.Chains, 2)
	assert.Equal(t, "AGS", entry.Chains[0].Sequence())

	_, err = ReadStructure(write(t, dir, "model.mol2", structure))
	assert.ErrorIs(t, err, ipsae.ErrUnsupportedFormat)
}
