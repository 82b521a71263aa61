/*
Package ipsae scores the interfaces of multimeric protein structure
predictions. A Dataset pairs one alpha-carbon coordinate per residue with a
predicted aligned error (PAE) matrix over the same residues. From it, the
package computes per-chain-pair scores (ChainPairScores) and per-residue
scores (ResidueScores), counting only residue pairs whose PAE and distance
both fall at or below a pair of cutoffs.

Residue pairs that pass both cutoffs are called interactions. A chain pair
or residue without any interaction is omitted from the output rather than
reported with a zero score.

A Scorer runs both computations against a single distance matrix and
returns a ResultSet, which can be written in a flat JSON interchange form
with ResultSet.WriteJSON.
*/
package ipsae
