package ipsae

import (
	"encoding/json"
	"fmt"
	"io"
)

// Interchange is the flat, value-only form of a ResultSet. Its JSON
// encoding is the contract consumed by report generators, so field names
// and order must stay stable.
type Interchange struct {
	ChainChainScores []ChainPairRecord `json:"chain_chain_scores"`
	ResidueScores    []ResidueRecord   `json:"residue_scores"`
	StructureData    StructureRecord   `json:"structure_data"`
}

// ChainPairRecord is the interchange form of a ChainPairScore.
type ChainPairRecord struct {
	Chain1            string    `json:"chain1"`
	Chain2            string    `json:"chain2"`
	IPSAEScore        float64   `json:"ipsae_score"`
	PDockQScore       float64   `json:"pdockq_score"`
	LISScore          float64   `json:"lis_score"`
	AvgPAE            float64   `json:"avg_pae"`
	AvgDistance       float64   `json:"avg_distance"`
	NumInteractions   int       `json:"num_interactions"`
	ValidInteractions [][2]int  `json:"valid_interactions"`
	PAEValues         []float64 `json:"pae_values"`
	Distances         []float64 `json:"distances"`
}

// ResidueRecord is the interchange form of a ResidueScore.
type ResidueRecord struct {
	Chain             string    `json:"chain"`
	ResidueNumber     int       `json:"residue_number"`
	ResidueName       string    `json:"residue_name"`
	IPSAEScore        float64   `json:"ipsae_score"`
	AvgPAE            float64   `json:"avg_pae"`
	AvgDistance       float64   `json:"avg_distance"`
	NumInteractions   int       `json:"num_interactions"`
	ValidInteractions [][2]int  `json:"valid_interactions"`
	PAEValues         []float64 `json:"pae_values"`
	Distances         []float64 `json:"distances"`
}

// StructureRecord is the interchange form of a Dataset. PAEMatrix is
// null when no matrix was attached.
type StructureRecord struct {
	Chains      []string       `json:"chains"`
	Residues    []ResidueTuple `json:"residues"`
	Coordinates [][3]float64   `json:"coordinates"`
	PAEMatrix   [][]float64    `json:"pae_matrix"`
}

// ResidueTuple encodes a Residue as the JSON array [chain, number, name].
type ResidueTuple Residue

func (t ResidueTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.Chain, t.Number, t.Name})
}

func (t *ResidueTuple) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 3 {
		return fmt.Errorf("residue tuple needs 3 fields but has %d",
			len(fields))
	}
	if err := json.Unmarshal(fields[0], &t.Chain); err != nil {
		return fmt.Errorf("residue chain: %w", err)
	}
	if err := json.Unmarshal(fields[1], &t.Number); err != nil {
		return fmt.Errorf("residue number: %w", err)
	}
	if err := json.Unmarshal(fields[2], &t.Name); err != nil {
		return fmt.Errorf("residue name: %w", err)
	}
	return nil
}

// Interchange converts rs into its flat value-only form. Every slice in
// the result is freshly allocated.
func (rs *ResultSet) Interchange() *Interchange {
	out := &Interchange{
		ChainChainScores: make([]ChainPairRecord, 0, len(rs.ChainPairs)),
		ResidueScores:    make([]ResidueRecord, 0, len(rs.Residues)),
	}
	for _, s := range rs.ChainPairs {
		pairs, paes, dists := flatten(s.Interactions)
		out.ChainChainScores = append(out.ChainChainScores, ChainPairRecord{
			Chain1:            s.Chain1,
			Chain2:            s.Chain2,
			IPSAEScore:        s.IPSAE,
			PDockQScore:       s.PDockQ,
			LISScore:          s.LIS,
			AvgPAE:            s.AvgPAE,
			AvgDistance:       s.AvgDistance,
			NumInteractions:   s.NumInteractions,
			ValidInteractions: pairs,
			PAEValues:         paes,
			Distances:         dists,
		})
	}
	for _, s := range rs.Residues {
		pairs, paes, dists := flatten(s.Interactions)
		out.ResidueScores = append(out.ResidueScores, ResidueRecord{
			Chain:             s.Chain,
			ResidueNumber:     s.ResidueNumber,
			ResidueName:       s.ResidueName,
			IPSAEScore:        s.IPSAE,
			AvgPAE:            s.AvgPAE,
			AvgDistance:       s.AvgDistance,
			NumInteractions:   s.NumInteractions,
			ValidInteractions: pairs,
			PAEValues:         paes,
			Distances:         dists,
		})
	}
	if rs.Dataset != nil {
		out.StructureData = structureRecord(rs.Dataset)
	}
	return out
}

func flatten(inters []Interaction) ([][2]int, []float64, []float64) {
	pairs := make([][2]int, len(inters))
	paes := make([]float64, len(inters))
	dists := make([]float64, len(inters))
	for k, in := range inters {
		pairs[k] = [2]int{in.I, in.J}
		paes[k] = in.PAE
		dists[k] = in.Distance
	}
	return pairs, paes, dists
}

func structureRecord(ds *Dataset) StructureRecord {
	rec := StructureRecord{
		Chains:      append(make([]string, 0, len(ds.Chains)), ds.Chains...),
		Residues:    make([]ResidueTuple, len(ds.Residues)),
		Coordinates: make([][3]float64, len(ds.Coords)),
	}
	for i, r := range ds.Residues {
		rec.Residues[i] = ResidueTuple(r)
	}
	for i, c := range ds.Coords {
		rec.Coordinates[i] = c
	}
	if ds.PAE != nil {
		rec.PAEMatrix = ds.PAE.Rows()
	}
	return rec
}

// WriteJSON writes the interchange form of rs to w as indented JSON.
// Identical result sets always produce identical bytes. Non-finite
// scores or matrix values cannot be encoded and produce an error.
func (rs *ResultSet) WriteJSON(w io.Writer) error {
	bs, err := json.MarshalIndent(rs.Interchange(), "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode results: %w", err)
	}
	bs = append(bs, '\n')
	if _, err := w.Write(bs); err != nil {
		return fmt.Errorf("could not write results: %w", err)
	}
	return nil
}

// ReadJSON decodes an interchange document written by WriteJSON.
func ReadJSON(r io.Reader) (*Interchange, error) {
	var in Interchange
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("could not decode results: %w", err)
	}
	return &in, nil
}

// Dataset rebuilds the structure dataset recorded in the interchange
// form, including its PAE matrix when one was recorded.
func (in *Interchange) Dataset() (*Dataset, error) {
	sd := in.StructureData
	residues := make([]Residue, len(sd.Residues))
	for i, t := range sd.Residues {
		residues[i] = Residue(t)
	}
	coords := make([]Coords, len(sd.Coordinates))
	for i, c := range sd.Coordinates {
		coords[i] = c
	}
	ds, err := NewDataset(residues, coords)
	if err != nil {
		return nil, err
	}
	if len(sd.Chains) != len(residues) {
		return nil, Errorf(ErrShape, "read dataset",
			"%d chain labels but %d residues", len(sd.Chains), len(residues))
	}
	for i, chain := range sd.Chains {
		if chain != residues[i].Chain {
			return nil, Errorf(ErrShape, "read dataset",
				"chain label '%s' at index %d disagrees with residue %s",
				chain, i, residues[i])
		}
	}
	if sd.PAEMatrix != nil {
		m, err := MatrixFromRows(sd.PAEMatrix)
		if err != nil {
			return nil, err
		}
		if err := ds.AttachPAE(m); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
