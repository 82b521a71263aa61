/*
Package pdb provides minimal support for extracting carbon-alpha residues
from predicted structure files, in either the PDB or the mmCIF format. For
each chain, in file order, it records every amino acid residue that has a
carbon-alpha atom along with that atom's coordinates.

Only the first model of a file is read. Alternate locations other than the
first are ignored, as is anything in a file that isn't protein related.

Entry.Dataset turns the result into the residue ordering used for scoring
interfaces.
*/
package pdb
