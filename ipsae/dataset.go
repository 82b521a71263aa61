package ipsae

import (
	"fmt"
	"sort"
)

// Residue identifies one amino acid of a structure. Its position in
// Dataset.Residues is the index used for the coordinate and PAE lookups.
type Residue struct {
	Chain  string
	Number int
	Name   string
}

func (r Residue) String() string {
	return fmt.Sprintf("%s:%s%d", r.Chain, r.Name, r.Number)
}

// Coords is the representative (alpha-carbon) position of a residue.
type Coords [3]float64

// Dataset is a structure prepared for scoring: parallel per-residue chain
// labels, residues and coordinates, plus a PAE matrix over the same
// residue order.
//
// A Dataset is only read by the scorers. PAE is nil until AttachPAE is
// called.
type Dataset struct {
	Chains   []string
	Residues []Residue
	Coords   []Coords
	PAE      *Matrix
}

// NewDataset builds a Dataset from residues and their coordinates. The
// per-residue chain labels are taken from the residues.
func NewDataset(residues []Residue, coords []Coords) (*Dataset, error) {
	if len(residues) != len(coords) {
		return nil, Errorf(ErrShape, "build dataset",
			"%d residues but %d coordinates", len(residues), len(coords))
	}
	chains := make([]string, len(residues))
	for i, r := range residues {
		chains[i] = r.Chain
	}
	return &Dataset{Chains: chains, Residues: residues, Coords: coords}, nil
}

// Len returns the number of residues.
func (ds *Dataset) Len() int {
	return len(ds.Residues)
}

// AttachPAE sets the PAE matrix of the dataset. It is the final loading
// step, and fails with ErrShape if the matrix does not cover exactly the
// dataset's residues.
func (ds *Dataset) AttachPAE(m *Matrix) error {
	if m == nil {
		return Errorf(ErrMissingData, "attach pae", "no PAE matrix")
	}
	if err := m.check(); err != nil {
		return err
	}
	if m.N != ds.Len() {
		return Errorf(ErrShape, "attach pae",
			"PAE matrix is %dx%d but the structure has %d residues",
			m.N, m.N, ds.Len())
	}
	ds.PAE = m
	return nil
}

// Validate checks that chain labels, residues, coordinates and the PAE
// matrix all have the same length N (the PAE matrix being N x N), and
// that each chain label agrees with its residue.
func (ds *Dataset) Validate() error {
	n := len(ds.Residues)
	if len(ds.Chains) != n {
		return Errorf(ErrShape, "validate dataset",
			"%d chain labels but %d residues", len(ds.Chains), n)
	}
	if len(ds.Coords) != n {
		return Errorf(ErrShape, "validate dataset",
			"%d coordinates but %d residues", len(ds.Coords), n)
	}
	if ds.PAE == nil {
		return Errorf(ErrMissingData, "validate dataset",
			"no PAE matrix attached")
	}
	if err := ds.PAE.check(); err != nil {
		return err
	}
	if ds.PAE.N != n {
		return Errorf(ErrShape, "validate dataset",
			"PAE matrix is %dx%d but there are %d residues",
			ds.PAE.N, ds.PAE.N, n)
	}
	for i, r := range ds.Residues {
		if ds.Chains[i] != r.Chain {
			return Errorf(ErrShape, "validate dataset",
				"chain label '%s' at index %d disagrees with residue %s",
				ds.Chains[i], i, r)
		}
	}
	return nil
}

// ChainIDs returns the distinct chain labels in lexicographic order.
func (ds *Dataset) ChainIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, c := range ds.Chains {
		if !seen[c] {
			seen[c] = true
			ids = append(ids, c)
		}
	}
	sort.Strings(ids)
	return ids
}

// chainIndices maps each chain label to the indices of its residues, in
// residue order.
func (ds *Dataset) chainIndices() map[string][]int {
	idx := make(map[string][]int)
	for i, c := range ds.Chains {
		idx[c] = append(idx[c], i)
	}
	return idx
}
