package ipsae

import (
	"math"

	"go.uber.org/zap"
)

// Cutoffs are the thresholds a residue pair must meet to count as an
// interaction: PAE(i, j) <= PAE and distance(i, j) <= Distance.
type Cutoffs struct {
	PAE      float64
	Distance float64
}

// DefaultCutoffs are 30 for PAE and 8 Angstroms for distance.
var DefaultCutoffs = Cutoffs{PAE: 30, Distance: 8}

// Validate returns an error wrapping ErrCutoff unless both cutoffs are
// positive finite numbers.
func (c Cutoffs) Validate() error {
	if !positive(c.PAE) {
		return Errorf(ErrCutoff, "validate cutoffs",
			"PAE cutoff must be positive and finite, got %v", c.PAE)
	}
	if !positive(c.Distance) {
		return Errorf(ErrCutoff, "validate cutoffs",
			"distance cutoff must be positive and finite, got %v", c.Distance)
	}
	return nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1) && !math.IsNaN(x)
}

func prepare(ds *Dataset, cutoffs Cutoffs) error {
	if err := cutoffs.Validate(); err != nil {
		return err
	}
	return ds.Validate()
}

// ResultSet is the outcome of one scoring run. It keeps a reference to
// the dataset it was computed from and should not be modified.
type ResultSet struct {
	ChainPairs []ChainPairScore
	Residues   []ResidueScore
	Dataset    *Dataset
	Cutoffs    Cutoffs
}

// Scorer runs the chain pair and residue scorers over a dataset with a
// fixed pair of cutoffs. A Scorer holds no state between runs, so one
// value may be used from several goroutines.
type Scorer struct {
	Cutoffs Cutoffs

	// Log receives progress messages. A nil Log discards them.
	Log *zap.Logger
}

// NewScorer returns a Scorer with the given cutoffs and logger.
func NewScorer(cutoffs Cutoffs, log *zap.Logger) *Scorer {
	return &Scorer{Cutoffs: cutoffs, Log: log}
}

// Run validates ds, computes its distance matrix once, and scores all
// chain pairs and then all residues against it. Nothing is returned but
// the error if ds or the cutoffs are malformed.
func (s *Scorer) Run(ds *Dataset) (*ResultSet, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if err := prepare(ds, s.Cutoffs); err != nil {
		return nil, err
	}
	log = log.With(
		zap.Int("residues", ds.Len()),
		zap.Float64("pae_cutoff", s.Cutoffs.PAE),
		zap.Float64("distance_cutoff", s.Cutoffs.Distance))

	dists := Distances(ds.Coords)
	log.Debug("computed distance matrix", zap.Int("n", dists.N))

	pairs := chainPairScores(ds, dists, s.Cutoffs)
	log.Debug("scored chain pairs",
		zap.Int("chains", len(ds.ChainIDs())), zap.Int("pairs", len(pairs)))

	residues := residueScores(ds, dists, s.Cutoffs)
	log.Debug("scored residues", zap.Int("scored", len(residues)))

	log.Info("scoring complete",
		zap.Int("chain_pairs", len(pairs)),
		zap.Int("residue_scores", len(residues)))
	return &ResultSet{
		ChainPairs: pairs,
		Residues:   residues,
		Dataset:    ds,
		Cutoffs:    s.Cutoffs,
	}, nil
}
