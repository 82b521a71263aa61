package pdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/ipsae/ipsae"
)

// atomSiteColumns lists, for each value needed from the _atom_site loop,
// the accepted column names in order of preference. Author-assigned
// identifiers are preferred, matching what PDB files carry.
var atomSiteColumns = map[string][]string{
	"atom":  {"auth_atom_id", "label_atom_id"},
	"comp":  {"auth_comp_id", "label_comp_id"},
	"chain": {"auth_asym_id", "label_asym_id"},
	"seq":   {"auth_seq_id", "label_seq_id"},
	"x":     {"Cartn_x"},
	"y":     {"Cartn_y"},
	"z":     {"Cartn_z"},
}

// ParseCIF reads the _atom_site loop of an mmCIF file from r and keeps
// the carbon-alpha atoms of the first model. name is only used in errors.
func ParseCIF(r io.Reader, name string) (*Entry, error) {
	entry := newEntry(name)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	var (
		columns []string
		inLoop  bool
		inRows  bool
		cols    map[string]int
		pending []string
		model   string
		lineNum int
	)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "loop_":
			if inRows {
				return entry.finish()
			}
			inLoop, columns = true, columns[:0]
			continue
		case inLoop && !inRows && strings.HasPrefix(line, "_atom_site."):
			columns = append(columns, strings.TrimPrefix(line, "_atom_site."))
			continue
		case inLoop && !inRows && strings.HasPrefix(line, "_"):
			// Some other category's loop.
			inLoop = false
			continue
		}
		if !inLoop || len(columns) == 0 {
			continue
		}
		if line == "" || line[0] == '#' || line[0] == '_' ||
			strings.HasPrefix(line, "data_") {
			if inRows {
				break
			}
			continue
		}

		if !inRows {
			var err error
			if cols, err = resolveColumns(columns); err != nil {
				return nil, ipsae.Errorf(ipsae.ErrMissingData, "read structure",
					"%s", err).WithPath(name)
			}
			inRows = true
		}
		tokens, err := tokenize(line)
		if err != nil {
			return nil, malformed(name, "line %d: %s", lineNum, err)
		}
		pending = append(pending, tokens...)
		for len(pending) >= len(columns) {
			row := pending[:len(columns)]
			pending = pending[len(columns):]

			if i, ok := cols["model"]; ok {
				if model == "" {
					model = row[i]
				} else if row[i] != model {
					return entry.finish()
				}
			}
			if err := entry.parseAtomSite(cols, row); err != nil {
				return nil, malformed(name, "line %d: %s", lineNum, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read structure", err).
			WithPath(name)
	}
	if len(pending) > 0 {
		return nil, malformed(name,
			"_atom_site loop ends with an incomplete row of %d values",
			len(pending))
	}
	return entry.finish()
}

// resolveColumns maps each needed value to its column index.
func resolveColumns(columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	cols := make(map[string]int)
	for key, names := range atomSiteColumns {
		found := false
		for _, name := range names {
			if i, ok := index[name]; ok {
				cols[key] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("_atom_site loop has no %s column",
				strings.Join(names, " or "))
		}
	}
	optional := map[string]string{
		"group": "group_PDB",
		"alt":   "label_alt_id",
		"ins":   "pdbx_PDB_ins_code",
		"model": "pdbx_PDB_model_num",
	}
	for key, name := range optional {
		if i, ok := index[name]; ok {
			cols[key] = i
		}
	}
	return cols, nil
}

func (e *entry) parseAtomSite(cols map[string]int, row []string) error {
	if unquote(row[cols["atom"]]) != "CA" {
		return nil
	}
	resName := row[cols["comp"]]
	if i, ok := cols["group"]; ok && row[i] == "HETATM" {
		if _, ok := AminoThreeToOne[resName]; !ok {
			return nil
		}
	}
	if i, ok := cols["alt"]; ok {
		if alt := row[i]; alt != "." && alt != "?" && alt != "A" {
			return nil
		}
	}

	seqNum, err := strconv.Atoi(row[cols["seq"]])
	if err != nil {
		return fmt.Errorf("invalid residue number '%s'", row[cols["seq"]])
	}
	var coords [3]float64
	for i, key := range []string{"x", "y", "z"} {
		coords[i], err = strconv.ParseFloat(row[cols[key]], 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate '%s'", row[cols[key]])
		}
	}
	ins := byte(' ')
	if i, ok := cols["ins"]; ok {
		if v := row[i]; v != "?" && v != "." && len(v) > 0 {
			ins = v[0]
		}
	}
	e.add(row[cols["chain"]], Residue{
		Name:          resName,
		SequenceNum:   seqNum,
		InsertionCode: ins,
		CA:            coords,
	})
	return nil
}

// tokenize splits a line of a CIF data block into values. Values may be
// quoted with single or double quotes; a quote only closes a value when it
// is followed by whitespace or the end of the line.
func tokenize(line string) ([]string, error) {
	tokens := make([]string, 0, 21)
	for i := 0; i < len(line); {
		if line[i] == ' ' || line[i] == '\t' {
			i++
			continue
		}
		if q := line[i]; q == '\'' || q == '"' {
			j := i + 1
			for ; j < len(line); j++ {
				if line[j] == q && (j+1 == len(line) ||
					line[j+1] == ' ' || line[j+1] == '\t') {
					break
				}
			}
			if j >= len(line) {
				return nil, fmt.Errorf("unterminated quoted value")
			}
			tokens = append(tokens, line[i:j+1])
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		tokens = append(tokens, line[i:j])
		i = j
	}
	return tokens, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
