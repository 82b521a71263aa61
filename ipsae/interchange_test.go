package ipsae

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterchangeKeys(t *testing.T) {
	rs, err := NewScorer(DefaultCutoffs, nil).Run(twoChains(t, 10))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rs.WriteJSON(&buf))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.ElementsMatch(t,
		[]string{"chain_chain_scores", "residue_scores", "structure_data"},
		keys(doc))

	pairs := doc["chain_chain_scores"].([]interface{})
	require.Len(t, pairs, 1)
	assert.ElementsMatch(t, []string{
		"chain1", "chain2", "ipsae_score", "pdockq_score", "lis_score",
		"avg_pae", "avg_distance", "num_interactions", "valid_interactions",
		"pae_values", "distances",
	}, keys(pairs[0].(map[string]interface{})))

	residues := doc["residue_scores"].([]interface{})
	require.Len(t, residues, 5)
	assert.ElementsMatch(t, []string{
		"chain", "residue_number", "residue_name", "ipsae_score", "avg_pae",
		"avg_distance", "num_interactions", "valid_interactions",
		"pae_values", "distances",
	}, keys(residues[0].(map[string]interface{})))

	sd := doc["structure_data"].(map[string]interface{})
	assert.ElementsMatch(t,
		[]string{"chains", "residues", "coordinates", "pae_matrix"}, keys(sd))
	assert.Equal(t, []interface{}{"A", 1.0, "ALA"},
		sd["residues"].([]interface{})[0])
	assert.Equal(t, []interface{}{0.0, 0.0, 5.0},
		sd["coordinates"].([]interface{})[3])
}

func TestInterchangeEmptyScoresAreArrays(t *testing.T) {
	rs, err := NewScorer(Cutoffs{PAE: 1, Distance: 0.5}, nil).
		Run(twoChains(t, 10))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rs.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"chain_chain_scores": []`)
	assert.Contains(t, buf.String(), `"residue_scores": []`)
}

func TestInterchangeDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ds := randomDataset(t, rng, 40, "A", "B", "C")
	cutoffs := Cutoffs{PAE: 20, Distance: 12}

	var first, second bytes.Buffer
	rs1, err := NewScorer(cutoffs, nil).Run(ds)
	require.NoError(t, err)
	require.NoError(t, rs1.WriteJSON(&first))

	rs2, err := NewScorer(cutoffs, nil).Run(ds)
	require.NoError(t, err)
	require.NoError(t, rs2.WriteJSON(&second))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestInterchangeDatasetRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	ds := randomDataset(t, rng, 25, "A", "B")
	rs, err := NewScorer(DefaultCutoffs, nil).Run(ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rs.WriteJSON(&buf))
	in, err := ReadJSON(&buf)
	require.NoError(t, err)

	got, err := in.Dataset()
	require.NoError(t, err)
	assert.Equal(t, ds.Chains, got.Chains)
	assert.Equal(t, ds.Residues, got.Residues)
	assert.Equal(t, ds.Coords, got.Coords)
	assert.Equal(t, ds.PAE.Data, got.PAE.Data)

	// Rescoring the decoded dataset reproduces the recorded scores.
	again, err := NewScorer(DefaultCutoffs, nil).Run(got)
	require.NoError(t, err)
	assert.Equal(t, in, again.Interchange())
}

func TestInterchangeDatasetChainLabels(t *testing.T) {
	rs, err := NewScorer(DefaultCutoffs, nil).Run(twoChains(t, 10))
	require.NoError(t, err)
	in := rs.Interchange()

	in.StructureData.Chains[3] = "A"
	_, err = in.Dataset()
	assert.ErrorIs(t, err, ErrShape)

	in.StructureData.Chains = in.StructureData.Chains[:4]
	_, err = in.Dataset()
	assert.ErrorIs(t, err, ErrShape)
}

func TestWriteJSONRejectsNaN(t *testing.T) {
	ds := twoChains(t, 10)
	ds.PAE.Set(0, 0, math.NaN())
	rs, err := NewScorer(DefaultCutoffs, nil).Run(ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, rs.WriteJSON(&buf))
}

func TestReadJSONBadResidue(t *testing.T) {
	_, err := ReadJSON(bytes.NewBufferString(
		`{"structure_data": {"residues": [["A", 1]]}}`))
	assert.Error(t, err)
}

func keys(m map[string]interface{}) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}
