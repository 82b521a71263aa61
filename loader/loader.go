// Package loader assembles scoring datasets from a structure file and a
// PAE file, choosing a reader for each from its file extension.
package loader

import (
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BurntSushi/ipsae/ipsae"
	"github.com/BurntSushi/ipsae/pae"
	"github.com/BurntSushi/ipsae/pdb"
)

// StructureReaders maps a lower case structure file extension to the
// function that reads it.
var StructureReaders = map[string]func(string) (*pdb.Entry, error){
	".pdb":   pdb.ReadPDB,
	".ent":   pdb.ReadPDB,
	".cif":   pdb.ReadCIF,
	".mmcif": pdb.ReadCIF,
}

// Loader reads structure and PAE files into datasets.
type Loader struct {
	// PAE reads the PAE matrix. Its Keys decide which fields are accepted.
	PAE pae.Reader

	Log *zap.Logger
}

// New returns a Loader with the default PAE keys that logs to log.
func New(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{PAE: pae.Reader{Log: log}, Log: log}
}

// Load reads the structure in structurePath and the PAE matrix in paePath
// and returns them as a validated dataset. A trailing ".gz" on either
// path selects gzip decompression; the extension before it selects the
// reader.
//
// On any failure no dataset is returned. Unrecognized extensions fail with
// ipsae.ErrUnsupportedFormat.
func (l *Loader) Load(structurePath, paePath string) (*ipsae.Dataset, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("structure", structurePath),
		zap.String("pae", paePath))

	readStructure, err := structureReader(structurePath)
	if err != nil {
		return nil, err
	}
	readPAE, err := l.paeReader(paePath)
	if err != nil {
		return nil, err
	}

	entry, err := readStructure(structurePath)
	if err != nil {
		return nil, err
	}
	ds, err := entry.Dataset()
	if err != nil {
		return nil, err
	}
	log.Debug("read structure",
		zap.Int("chains", len(entry.Chains)), zap.Int("residues", ds.Len()))

	m, err := readPAE(paePath)
	if err != nil {
		return nil, err
	}
	if err := ds.AttachPAE(m); err != nil {
		if e, ok := err.(*ipsae.Error); ok {
			return nil, e.WithPath(paePath)
		}
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	log.Debug("loaded dataset", zap.Strings("chains", ds.ChainIDs()))
	return ds, nil
}

// ReadStructure reads a structure file with the reader its extension
// selects.
func ReadStructure(fileName string) (*pdb.Entry, error) {
	read, err := structureReader(fileName)
	if err != nil {
		return nil, err
	}
	return read(fileName)
}

// Load reads a dataset with a default Loader.
func Load(structurePath, paePath string, log *zap.Logger) (*ipsae.Dataset, error) {
	return New(log).Load(structurePath, paePath)
}

// Ext returns the lower case extension of fileName, looking past a
// trailing ".gz".
func Ext(fileName string) string {
	base := strings.ToLower(filepath.Base(fileName))
	base = strings.TrimSuffix(base, ".gz")
	return filepath.Ext(base)
}

func structureReader(fileName string) (func(string) (*pdb.Entry, error), error) {
	ext := Ext(fileName)
	if read, ok := StructureReaders[ext]; ok {
		return read, nil
	}
	return nil, unsupported("structure", fileName, ext, extensions(StructureReaders))
}

func (l *Loader) paeReader(fileName string) (func(string) (*ipsae.Matrix, error), error) {
	readers := map[string]func(string) (*ipsae.Matrix, error){
		".json": l.PAE.ReadJSON,
		".npz":  l.PAE.ReadNPZ,
	}
	ext := Ext(fileName)
	if read, ok := readers[ext]; ok {
		return read, nil
	}
	return nil, unsupported("PAE", fileName, ext, extensions(readers))
}

func unsupported(kind, fileName, ext string, accepted []string) error {
	if ext == "" {
		ext = "(none)"
	}
	return ipsae.Errorf(ipsae.ErrUnsupportedFormat, "load "+strings.ToLower(kind),
		"%s files with extension %s are not supported; use one of %s",
		kind, ext, strings.Join(accepted, ", ")).WithPath(fileName)
}

func extensions[F any](readers map[string]F) []string {
	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
