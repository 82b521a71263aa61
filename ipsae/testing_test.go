package ipsae

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// twoChains builds the two chain structure used throughout these tests:
// chain A has three residues along the x axis, chain B two residues 5
// Angstroms above. Every PAE entry is pae, except the diagonal which is
// zero.
func twoChains(t testing.TB, pae float64) *Dataset {
	residues := []Residue{
		{"A", 1, "ALA"}, {"A", 2, "GLY"}, {"A", 3, "SER"},
		{"B", 1, "LYS"}, {"B", 2, "LEU"},
	}
	coords := []Coords{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
		{0, 0, 5}, {1, 0, 5},
	}
	ds, err := NewDataset(residues, coords)
	require.NoError(t, err)

	m := NewMatrix(len(residues))
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if i != j {
				m.Set(i, j, pae)
			}
		}
	}
	require.NoError(t, ds.AttachPAE(m))
	return ds
}

// randomDataset builds a structure of n residues spread over the given
// chains, with coordinates in a 30 Angstrom cube and an asymmetric PAE
// matrix with values in [0, 32).
func randomDataset(t testing.TB, rng *rand.Rand, n int,
	chains ...string) *Dataset {

	residues := make([]Residue, n)
	coords := make([]Coords, n)
	for i := 0; i < n; i++ {
		residues[i] = Residue{
			Chain:  chains[i*len(chains)/n],
			Number: i + 1,
			Name:   "ALA",
		}
		coords[i] = Coords{
			rng.Float64() * 30, rng.Float64() * 30, rng.Float64() * 30,
		}
	}
	ds, err := NewDataset(residues, coords)
	require.NoError(t, err)

	m := NewMatrix(n)
	for i := range m.Data {
		m.Data[i] = rng.Float64() * 32
	}
	require.NoError(t, ds.AttachPAE(m))
	return ds
}
