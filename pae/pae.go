/*
Package pae reads predicted aligned error (PAE) matrices as written by
structure prediction pipelines, either as JSON documents or as NumPy NPZ
archives, optionally gzip compressed.

The matrix may be stored under several names depending on the pipeline
that produced it. A Reader tries each of its Keys in order and uses the
first one present; DefaultKeys lists the names accepted out of the box.
*/
package pae

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/BurntSushi/ipsae/ipsae"
)

// DefaultKeys are the field names under which a PAE matrix is looked up,
// in order of priority.
var DefaultKeys = []string{"pae_matrix", "predicted_aligned_error", "pae"}

// Reader reads PAE matrices. The zero value uses DefaultKeys and discards
// log messages.
type Reader struct {
	// Keys are the accepted field names, tried in order.
	Keys []string

	Log *zap.Logger
}

func (r Reader) keys() []string {
	if len(r.Keys) == 0 {
		return DefaultKeys
	}
	return r.Keys
}

func (r Reader) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// ReadJSON reads a PAE matrix from a JSON file using the default Reader.
func ReadJSON(fileName string) (*ipsae.Matrix, error) {
	return Reader{}.ReadJSON(fileName)
}

// ReadNPZ reads a PAE matrix from an NPZ file using the default Reader.
func ReadNPZ(fileName string) (*ipsae.Matrix, error) {
	return Reader{}.ReadNPZ(fileName)
}

// ReadJSON reads a PAE matrix from a JSON file. If the file name ends with
// ".gz", gzip decompression will be used.
func (r Reader) ReadJSON(fileName string) (*ipsae.Matrix, error) {
	f, err := open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.DecodeJSON(f, fileName)
}

// DecodeJSON reads a PAE matrix from a JSON document. The document is
// either an object holding the matrix under one of r's keys, or a list
// whose first element is such an object. The matrix is either a list of
// rows or a flat list whose length is a perfect square, read row by row.
// name is only used in errors and log messages.
func (r Reader) DecodeJSON(rd io.Reader, name string) (*ipsae.Matrix, error) {
	log := r.log().With(zap.String("file", name))

	var doc json.RawMessage
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
			WithPath(name)
	}
	doc = bytes.TrimSpace(doc)
	if len(doc) > 0 && doc[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(doc, &list); err != nil || len(list) == 0 {
			return nil, ipsae.Errorf(ipsae.ErrMalformed, "read pae",
				"expected a non-empty list of objects").WithPath(name)
		}
		doc = list[0]
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
			WithPath(name)
	}
	log.Debug("read PAE document", zap.Strings("keys", sortedKeys(fields)))

	for _, key := range r.keys() {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		m, err := decodeValues(raw)
		if err != nil {
			if e, ok := err.(*ipsae.Error); ok {
				return nil, e.WithPath(name)
			}
			return nil, err
		}
		log.Debug("found PAE matrix", zap.String("key", key), zap.Int("n", m.N))
		return m, nil
	}
	return nil, missingKeys(name, r.keys(), sortedKeys(fields))
}

// decodeValues turns the JSON value of a PAE field into a matrix. A null
// entry is an error rather than a zero.
func decodeValues(raw json.RawMessage) (*ipsae.Matrix, error) {
	var rows [][]*float64
	if err := json.Unmarshal(raw, &rows); err == nil {
		values := make([][]float64, len(rows))
		for i, row := range rows {
			values[i] = make([]float64, len(row))
			for j, v := range row {
				if v == nil {
					return nil, nullValue(i, j)
				}
				values[i][j] = *v
			}
		}
		return ipsae.MatrixFromRows(values)
	}
	var flat []*float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, ipsae.Errorf(ipsae.ErrMalformed, "read pae",
			"PAE values are neither a list of rows nor a flat list of numbers")
	}
	values := make([]float64, len(flat))
	for k, v := range flat {
		if v != nil {
			values[k] = *v
		}
	}
	m, err := reshape(values)
	if err != nil {
		return nil, err
	}
	for k, v := range flat {
		if v == nil {
			return nil, nullValue(k/m.N, k%m.N)
		}
	}
	return m, nil
}

func nullValue(row, col int) error {
	return ipsae.Errorf(ipsae.ErrMalformed, "read pae",
		"PAE value at row %d, column %d is null", row, col)
}

// reshape builds a square matrix from values stored row by row.
func reshape(flat []float64) (*ipsae.Matrix, error) {
	n := int(math.Sqrt(float64(len(flat))))
	for n*n > len(flat) {
		n--
	}
	for (n+1)*(n+1) <= len(flat) {
		n++
	}
	if n*n != len(flat) {
		return nil, ipsae.Errorf(ipsae.ErrShape, "read pae",
			"%d values cannot form a square matrix", len(flat))
	}
	return &ipsae.Matrix{N: n, Data: flat}, nil
}

func missingKeys(name string, want, have []string) error {
	return ipsae.Errorf(ipsae.ErrMissingData, "read pae",
		"no PAE matrix under any of [%s]; available keys: [%s]",
		strings.Join(want, ", "), strings.Join(have, ", ")).WithPath(name)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
			WithPath(fileName)
	}
	return gzipFile{gz, f}, nil
}
