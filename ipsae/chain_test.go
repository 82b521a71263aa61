package ipsae

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainPairScoresTwoChains(t *testing.T) {
	ds := twoChains(t, 10)

	scores, err := ChainPairScores(ds, Cutoffs{PAE: 30, Distance: 8})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, "A", s.Chain1)
	assert.Equal(t, "B", s.Chain2)
	assert.Equal(t, 6, s.NumInteractions)
	assert.InDelta(t, 10.0, s.AvgPAE, 1e-9)
	assert.InDelta(t, 5.11370389131881, s.AvgDistance, 1e-9)
	assert.InDelta(t, 1.0-10.0/30.0, s.IPSAE, 1e-9)
	assert.InDelta(t, 0.0066928509242848554, s.PDockQ, 1e-12)
	assert.InDelta(t, 1.0, s.LIS, 1e-12)

	for _, in := range s.Interactions {
		assert.Equal(t, "A", ds.Chains[in.I])
		assert.Equal(t, "B", ds.Chains[in.J])
		assert.LessOrEqual(t, in.Distance, 8.0)
		assert.GreaterOrEqual(t, in.Distance, 5.0)
	}
}

func TestChainPairScoresOmitsDistantPairs(t *testing.T) {
	ds := twoChains(t, 10)

	scores, err := ChainPairScores(ds, Cutoffs{PAE: 30, Distance: 4})
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestChainPairScoresOmitsHighPAE(t *testing.T) {
	ds := twoChains(t, 31)

	scores, err := ChainPairScores(ds, Cutoffs{PAE: 30, Distance: 8})
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestChainPairScoresKeepsOtherPairs(t *testing.T) {
	// Chain C is far from everything; only (A, B) may be reported.
	residues := []Residue{
		{"A", 1, "ALA"}, {"B", 1, "ALA"}, {"C", 1, "ALA"},
	}
	coords := []Coords{{0, 0, 0}, {0, 0, 3}, {100, 0, 0}}
	ds, err := NewDataset(residues, coords)
	require.NoError(t, err)
	require.NoError(t, ds.AttachPAE(NewMatrix(3)))

	scores, err := ChainPairScores(ds, DefaultCutoffs)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "A", scores[0].Chain1)
	assert.Equal(t, "B", scores[0].Chain2)
}

func TestChainPairScoresReadsOneDirection(t *testing.T) {
	ds := twoChains(t, 10)
	// Make the B->A direction unacceptable. A->B is still fine, and is the
	// only direction that is read for the pair (A, B).
	for i := 3; i < 5; i++ {
		for j := 0; j < 3; j++ {
			ds.PAE.Set(i, j, 50)
		}
	}

	scores, err := ChainPairScores(ds, DefaultCutoffs)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 6, scores[0].NumInteractions)
}

func TestChainPairScoresOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// Chain labels appear out of order in the residue list.
	ds := randomDataset(t, rng, 60, "C", "A", "B")

	scores, err := ChainPairScores(ds, Cutoffs{PAE: 32, Distance: 100})
	require.NoError(t, err)

	var got [][2]string
	for _, s := range scores {
		got = append(got, [2]string{s.Chain1, s.Chain2})
	}
	assert.Equal(t, [][2]string{{"A", "B"}, {"A", "C"}, {"B", "C"}}, got)
}

func TestChainPairScoresAggregatesMatchInteractions(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for trial := 0; trial < 20; trial++ {
		ds := randomDataset(t, rng, 50, "A", "B", "C", "D")

		scores, err := ChainPairScores(ds, Cutoffs{PAE: 15, Distance: 12})
		require.NoError(t, err)
		for _, s := range scores {
			require.Equal(t, s.NumInteractions, len(s.Interactions))

			var sumPAE, sumDist float64
			for _, in := range s.Interactions {
				assert.Equal(t, ds.PAE.At(in.I, in.J), in.PAE)
				assert.Equal(t, dist(ds.Coords[in.I], ds.Coords[in.J]),
					in.Distance)
				sumPAE += in.PAE
				sumDist += in.Distance
			}
			n := float64(len(s.Interactions))
			assert.InDelta(t, sumPAE/n, s.AvgPAE, 1e-9)
			assert.InDelta(t, sumDist/n, s.AvgDistance, 1e-9)
			assert.InDelta(t, 1-s.AvgPAE/15, s.IPSAE, 1e-9)
			assert.InDelta(t,
				1/(1+math.Exp(-0.5*(s.AvgPAE-20))), s.PDockQ, 1e-9)
		}
	}
}

func TestChainPairScoresMonotoneInPAECutoff(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ds := randomDataset(t, rng, 80, "A", "B", "C")

	counts := func(paeCutoff float64) map[[2]string]int {
		scores, err := ChainPairScores(ds,
			Cutoffs{PAE: paeCutoff, Distance: 10})
		require.NoError(t, err)
		m := make(map[[2]string]int)
		for _, s := range scores {
			m[[2]string{s.Chain1, s.Chain2}] = s.NumInteractions
		}
		return m
	}

	prev := counts(1)
	for _, cutoff := range []float64{2, 5, 8, 13, 21, 34} {
		cur := counts(cutoff)
		for pair, n := range prev {
			assert.GreaterOrEqual(t, cur[pair], n,
				"pair %v at cutoff %v", pair, cutoff)
		}
		prev = cur
	}
}

func TestChainPairIsUnordered(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	ds := randomDataset(t, rng, 40, "A", "B")
	cutoffs := Cutoffs{PAE: 20, Distance: 15}

	ab, okAB, err := ChainPair(ds, cutoffs, "A", "B")
	require.NoError(t, err)
	ba, okBA, err := ChainPair(ds, cutoffs, "B", "A")
	require.NoError(t, err)

	require.True(t, okAB)
	require.True(t, okBA)
	assert.Equal(t, ab, ba)

	all, err := ChainPairScores(ds, cutoffs)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, all[0], ab)
}

func TestChainPairErrors(t *testing.T) {
	ds := twoChains(t, 10)

	_, _, err := ChainPair(ds, DefaultCutoffs, "A", "Z")
	assert.ErrorIs(t, err, ErrMissingData)

	_, _, err = ChainPair(ds, DefaultCutoffs, "A", "A")
	assert.ErrorIs(t, err, ErrMissingData)

	_, ok, err := ChainPair(ds, Cutoffs{PAE: 30, Distance: 4}, "B", "A")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChainPairScoresRejectsBadInput(t *testing.T) {
	ds := twoChains(t, 10)
	ds.Coords = ds.Coords[:4]

	_, err := ChainPairScores(ds, DefaultCutoffs)
	assert.ErrorIs(t, err, ErrShape)

	ds = twoChains(t, 10)
	for _, c := range []Cutoffs{
		{PAE: 0, Distance: 8},
		{PAE: 30, Distance: -1},
		{PAE: math.NaN(), Distance: 8},
		{PAE: 30, Distance: math.Inf(1)},
	} {
		_, err := ChainPairScores(ds, c)
		assert.ErrorIs(t, err, ErrCutoff, "cutoffs %+v", c)
	}
}
