package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/BurntSushi/ipsae/ipsae"
)

// AminoThreeToOne is a map from three letter amino acids to their
// corresponding single letter representation. Selenomethionine (MSE) is
// included since predicted structures sometimes carry it as a HETATM.
var AminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O', "MSE": 'M',
}

// Entry represents the residues of the first model of a structure file.
//
// Chains are kept in the order they first appear in the file, and so are
// the residues of each chain. Only residues with a carbon-alpha atom are
// recorded.
type Entry struct {
	Path   string
	Chains []*Chain
}

// Chain is a protein chain with its carbon-alpha residues.
type Chain struct {
	Ident    string
	Residues []Residue
}

// Residue is a single amino acid and the coordinates of its carbon-alpha
// atom.
type Residue struct {
	Name          string
	SequenceNum   int
	InsertionCode byte
	CA            [3]float64
}

// ReadPDB reads a structure from a PDB formatted file. If the file name
// ends with ".gz", gzip decompression will be used.
func ReadPDB(fileName string) (*Entry, error) {
	r, err := open(fileName)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ParsePDB(r, fileName)
}

// ReadCIF reads a structure from an mmCIF formatted file. If the file name
// ends with ".gz", gzip decompression will be used.
func ReadCIF(fileName string) (*Entry, error) {
	r, err := open(fileName)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ParseCIF(r, fileName)
}

// ParsePDB reads ATOM records (and HETATM records of modified amino acids)
// from r until the end of the first model. name is only used in errors.
func ParsePDB(r io.Reader, name string) (*Entry, error) {
	entry := newEntry(name)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}

		// The record name is always in the first six columns.
		switch strings.TrimSpace(line[0:6]) {
		case "ATOM", "HETATM":
			if err := entry.parseAtom(line); err != nil {
				return nil, malformed(name, "line %d: %s", lineNum, err)
			}
		case "ENDMDL":
			return entry.finish()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read structure", err).
			WithPath(name)
	}
	return entry.finish()
}

// parseAtom adds the residue of a carbon-alpha ATOM record to the entry.
// Every other record is skipped.
//
// Columns (1-based, inclusive) follow the PDB format description: atom
// name 13-16, alternate location 17, residue name 18-20, chain 22,
// residue number 23-26, insertion code 27 and x, y, z in 31-54.
func (e *entry) parseAtom(line string) error {
	if len(line) < 54 {
		return fmt.Errorf("ATOM record has %d columns, expected at least 54",
			len(line))
	}
	if strings.TrimSpace(line[12:16]) != "CA" {
		return nil
	}
	resName := strings.TrimSpace(line[17:20])
	if strings.HasPrefix(line, "HETATM") {
		// Only modified amino acids are kept, which also rules out
		// calcium ions named CA.
		if _, ok := AminoThreeToOne[resName]; !ok {
			return nil
		}
	}
	if alt := line[16]; alt != ' ' && alt != 'A' {
		return nil
	}

	seqNum, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return fmt.Errorf("invalid residue number '%s'", line[22:26])
	}
	var coords [3]float64
	for i := 0; i < 3; i++ {
		field := strings.TrimSpace(line[30+8*i : 38+8*i])
		coords[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate '%s'", field)
		}
	}
	e.add(string(line[21]), Residue{
		Name:          resName,
		SequenceNum:   seqNum,
		InsertionCode: line[26],
		CA:            coords,
	})
	return nil
}

// Chain returns the chain with the given identifier, or nil if there is no
// such chain.
func (e *Entry) Chain(ident string) *Chain {
	for _, c := range e.Chains {
		if c.Ident == ident {
			return c
		}
	}
	return nil
}

// Len returns the total number of residues over all chains.
func (e *Entry) Len() int {
	n := 0
	for _, c := range e.Chains {
		n += len(c.Residues)
	}
	return n
}

// Dataset flattens the entry into the residue order used for scoring:
// all residues of the first chain, then the second chain, and so on.
func (e *Entry) Dataset() (*ipsae.Dataset, error) {
	residues := make([]ipsae.Residue, 0, e.Len())
	coords := make([]ipsae.Coords, 0, e.Len())
	for _, c := range e.Chains {
		for _, r := range c.Residues {
			residues = append(residues, ipsae.Residue{
				Chain:  c.Ident,
				Number: r.SequenceNum,
				Name:   r.Name,
			})
			coords = append(coords, ipsae.Coords(r.CA))
		}
	}
	return ipsae.NewDataset(residues, coords)
}

// String returns a list of all chains, their residue ranges and their
// amino acid sequences, in file order.
func (e *Entry) String() string {
	lines := make([]string, 0, len(e.Chains))
	for _, chain := range e.Chains {
		lines = append(lines, chain.String())
	}
	return strings.Join(lines, "\n")
}

// Sequence returns the one letter amino acid sequence of the chain.
// Residues without a one letter code are written as 'X'.
func (c *Chain) Sequence() string {
	seq := make([]byte, len(c.Residues))
	for i, r := range c.Residues {
		if single, ok := AminoThreeToOne[r.Name]; ok {
			seq[i] = single
		} else {
			seq[i] = 'X'
		}
	}
	return string(seq)
}

// String returns a FASTA-like formatted string of this chain.
func (c *Chain) String() string {
	start, end := 0, 0
	if len(c.Residues) > 0 {
		start = c.Residues[0].SequenceNum
		end = c.Residues[len(c.Residues)-1].SequenceNum
	}
	return fmt.Sprintf("> Chain %s (%d, %d) :: length %d\n%s",
		c.Ident, start, end, len(c.Residues), c.Sequence())
}

// entry accumulates residues while a file is parsed. A residue is
// identified by its chain, number and insertion code, and only its first
// carbon-alpha atom is kept.
type entry struct {
	Entry
	chains map[string]*Chain
	seen   map[string]bool
}

func newEntry(name string) *entry {
	return &entry{
		Entry:  Entry{Path: name, Chains: make([]*Chain, 0)},
		chains: make(map[string]*Chain),
		seen:   make(map[string]bool),
	}
}

func (e *entry) add(chainID string, r Residue) {
	key := fmt.Sprintf("%s/%d/%c", chainID, r.SequenceNum, r.InsertionCode)
	if e.seen[key] {
		return
	}
	e.seen[key] = true

	chain, ok := e.chains[chainID]
	if !ok {
		chain = &Chain{Ident: chainID, Residues: make([]Residue, 0, 100)}
		e.chains[chainID] = chain
		e.Chains = append(e.Chains, chain)
	}
	chain.Residues = append(chain.Residues, r)
}

func (e *entry) finish() (*Entry, error) {
	if e.Len() == 0 {
		return nil, ipsae.Errorf(ipsae.ErrMissingData, "read structure",
			"no carbon-alpha atoms found").WithPath(e.Path)
	}
	return &e.Entry, nil
}

func malformed(name, format string, v ...interface{}) error {
	return ipsae.Errorf(ipsae.ErrMalformed, "read structure", format, v...).
		WithPath(name)
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// open opens fileName for reading, decompressing it if it ends in ".gz".
func open(fileName string) (io.ReadCloser, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	if path.Ext(fileName) != ".gz" {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read structure", err).
			WithPath(fileName)
	}
	return gzipFile{gz, f}, nil
}
