package ipsae

import "math"

// Interaction is a residue pair (I, J) that passed both cutoffs, together
// with the PAE(I, J) and distance values that qualified it.
type Interaction struct {
	I, J     int
	PAE      float64
	Distance float64
}

// ChainPairScore summarizes the interface between two distinct chains.
// Chain1 sorts before Chain2. The averages are taken over Interactions.
type ChainPairScore struct {
	Chain1, Chain2 string

	// IPSAE is 1 - AvgPAE/pae cutoff.
	IPSAE float64

	// PDockQ is a logistic transform of AvgPAE centered at 20.
	PDockQ float64

	// LIS is the fraction of all residue pairs across the two chains that
	// interact.
	LIS float64

	AvgPAE          float64
	AvgDistance     float64
	NumInteractions int
	Interactions    []Interaction
}

// ChainPairScores scores every unordered pair of distinct chains in ds.
// Pairs are visited in lexicographic chain order, and only pairs with at
// least one interaction appear in the result.
func ChainPairScores(ds *Dataset, cutoffs Cutoffs) ([]ChainPairScore, error) {
	if err := prepare(ds, cutoffs); err != nil {
		return nil, err
	}
	return chainPairScores(ds, Distances(ds.Coords), cutoffs), nil
}

// ChainPair scores the interface between chains a and b. The pair is
// unordered: ChainPair(ds, c, "A", "B") and ChainPair(ds, c, "B", "A")
// return the same score, with Chain1 being the lesser label. The boolean
// is false when the pair has no interactions.
func ChainPair(ds *Dataset, cutoffs Cutoffs,
	a, b string) (ChainPairScore, bool, error) {

	if err := prepare(ds, cutoffs); err != nil {
		return ChainPairScore{}, false, err
	}
	if a == b {
		return ChainPairScore{}, false, Errorf(ErrMissingData, "score chain pair",
			"a chain pair needs two distinct chains, got '%s' twice", a)
	}
	if b < a {
		a, b = b, a
	}
	chains := ds.chainIndices()
	for _, c := range []string{a, b} {
		if _, ok := chains[c]; !ok {
			return ChainPairScore{}, false, Errorf(ErrMissingData,
				"score chain pair", "chain '%s' is not in the structure", c)
		}
	}
	score, ok := scoreChainPair(ds, Distances(ds.Coords), cutoffs,
		a, b, chains[a], chains[b])
	return score, ok, nil
}

func chainPairScores(ds *Dataset, dists *Matrix,
	cutoffs Cutoffs) []ChainPairScore {

	ids := ds.ChainIDs()
	chains := ds.chainIndices()
	scores := make([]ChainPairScore, 0)
	for i, c1 := range ids {
		for _, c2 := range ids[i+1:] {
			score, ok := scoreChainPair(ds, dists, cutoffs,
				c1, c2, chains[c1], chains[c2])
			if ok {
				scores = append(scores, score)
			}
		}
	}
	return scores
}

func scoreChainPair(ds *Dataset, dists *Matrix, cutoffs Cutoffs,
	c1, c2 string, idx1, idx2 []int) (ChainPairScore, bool) {

	inters := make([]Interaction, 0)
	for _, i := range idx1 {
		for _, j := range idx2 {
			if in, ok := qualify(ds.PAE, dists, cutoffs, i, j); ok {
				inters = append(inters, in)
			}
		}
	}
	if len(inters) == 0 {
		return ChainPairScore{}, false
	}

	avgPAE, avgDist := averages(inters)
	return ChainPairScore{
		Chain1:          c1,
		Chain2:          c2,
		IPSAE:           ipsae(avgPAE, cutoffs.PAE),
		PDockQ:          pdockq(avgPAE),
		LIS:             float64(len(inters)) / float64(len(idx1)*len(idx2)),
		AvgPAE:          avgPAE,
		AvgDistance:     avgDist,
		NumInteractions: len(inters),
		Interactions:    inters,
	}, true
}

// qualify reads PAE(i, j) and the distance between i and j, and reports
// whether both are within their cutoffs.
func qualify(pae, dists *Matrix, cutoffs Cutoffs,
	i, j int) (Interaction, bool) {

	p, d := pae.At(i, j), dists.At(i, j)
	if p <= cutoffs.PAE && d <= cutoffs.Distance {
		return Interaction{I: i, J: j, PAE: p, Distance: d}, true
	}
	return Interaction{}, false
}

func averages(inters []Interaction) (avgPAE, avgDist float64) {
	for _, in := range inters {
		avgPAE += in.PAE
		avgDist += in.Distance
	}
	n := float64(len(inters))
	return avgPAE / n, avgDist / n
}

func ipsae(avgPAE, paeCutoff float64) float64 {
	return 1.0 - avgPAE/paeCutoff
}

func pdockq(avgPAE float64) float64 {
	return 1.0 / (1.0 + math.Exp(-0.5*(avgPAE-20.0)))
}
