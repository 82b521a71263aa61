package ipsae

// ResidueScore summarizes the interactions of one residue with every
// other residue of the structure, in its own chain or not.
type ResidueScore struct {
	Chain         string
	ResidueNumber int
	ResidueName   string

	// IPSAE is 1 - AvgPAE/pae cutoff.
	IPSAE float64

	AvgPAE          float64
	AvgDistance     float64
	NumInteractions int
	Interactions    []Interaction
}

// ResidueScores scores each residue i of ds against all residues j != i.
// Residues without interactions are left out, so the result may be
// shorter than ds.Residues.
func ResidueScores(ds *Dataset, cutoffs Cutoffs) ([]ResidueScore, error) {
	if err := prepare(ds, cutoffs); err != nil {
		return nil, err
	}
	return residueScores(ds, Distances(ds.Coords), cutoffs), nil
}

func residueScores(ds *Dataset, dists *Matrix,
	cutoffs Cutoffs) []ResidueScore {

	n := ds.Len()
	scores := make([]ResidueScore, 0)
	for i, res := range ds.Residues {
		inters := make([]Interaction, 0)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if in, ok := qualify(ds.PAE, dists, cutoffs, i, j); ok {
				inters = append(inters, in)
			}
		}
		if len(inters) == 0 {
			continue
		}

		avgPAE, avgDist := averages(inters)
		scores = append(scores, ResidueScore{
			Chain:           res.Chain,
			ResidueNumber:   res.Number,
			ResidueName:     res.Name,
			IPSAE:           ipsae(avgPAE, cutoffs.PAE),
			AvgPAE:          avgPAE,
			AvgDistance:     avgDist,
			NumInteractions: len(inters),
			Interactions:    inters,
		})
	}
	return scores
}
