package pae

import (
	"archive/zip"
	"bytes"
	"io"
	"math/bits"
	"os"
	"path"
	"strings"

	"github.com/sbinet/npyio/npz"
	"go.uber.org/zap"

	"github.com/BurntSushi/ipsae/ipsae"
)

// ReadNPZ reads a PAE matrix from a NumPy NPZ archive. The matrix is the
// array named after the first of r's keys present in the archive. If the
// file name ends with ".gz", gzip decompression will be used.
func (r Reader) ReadNPZ(fileName string) (*ipsae.Matrix, error) {
	var (
		ra   io.ReaderAt
		size int64
	)
	if path.Ext(fileName) == ".gz" {
		f, err := open(fileName)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		bs, err := io.ReadAll(f)
		if err != nil {
			return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
				WithPath(fileName)
		}
		ra, size = bytes.NewReader(bs), int64(len(bs))
	} else {
		f, err := os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		ra, size = f, info.Size()
	}
	return r.DecodeNPZ(ra, size, fileName)
}

// DecodeNPZ reads a PAE matrix from an NPZ archive of the given size.
// name is only used in errors and log messages.
func (r Reader) DecodeNPZ(ra io.ReaderAt, size int64,
	name string) (*ipsae.Matrix, error) {

	log := r.log().With(zap.String("file", name))
	zr, err := npz.NewReader(ra, size)
	if err != nil {
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
			WithPath(name)
	}
	sizes, err := entrySizes(ra, size)
	if err != nil {
		return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
			WithPath(name)
	}

	arrays := make(map[string]string, len(zr.Keys()))
	available := make([]string, 0, len(zr.Keys()))
	for _, full := range zr.Keys() {
		key := strings.TrimSuffix(full, ".npy")
		arrays[key] = full
		available = append(available, key)
	}
	log.Debug("read NPZ archive", zap.Strings("arrays", available))

	for _, key := range r.keys() {
		full, ok := arrays[key]
		if !ok {
			continue
		}
		m, err := readArray(zr, full, sizes[key])
		if err != nil {
			if e, ok := err.(*ipsae.Error); ok {
				return nil, e.WithPath(name)
			}
			return nil, ipsae.Wrap(ipsae.ErrMalformed, "read pae", err).
				WithPath(name)
		}
		log.Debug("found PAE matrix", zap.String("key", key), zap.Int("n", m.N))
		return m, nil
	}
	return nil, missingKeys(name, r.keys(), available)
}

// entrySizes returns the uncompressed size of every array in the archive,
// keyed by array name.
func entrySizes(ra io.ReaderAt, size int64) (map[string]uint64, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]uint64, len(zr.File))
	for _, f := range zr.File {
		sizes[strings.TrimSuffix(f.Name, ".npy")] = f.UncompressedSize64
	}
	return sizes, nil
}

var npyElemSize = map[string]uint64{"<f4": 4, "<f8": 8, "<i4": 4, "<i8": 8}

// readArray reads a one or two dimensional little-endian numeric array and
// returns it as a square matrix. The shape declared in the array header
// must fit in limit bytes.
func readArray(zr *npz.Reader, key string, limit uint64) (*ipsae.Matrix, error) {
	hdr := zr.Header(key)
	dtype := hdr.Descr.Type
	elemSize, ok := npyElemSize[dtype]
	if !ok {
		return nil, ipsae.Errorf(ipsae.ErrUnsupportedFormat, "read pae",
			"array type '%s' is not supported", dtype)
	}
	dims := hdr.Descr.Shape
	count, ok := elements(dims, elemSize, limit)
	if !ok {
		return nil, ipsae.Errorf(ipsae.ErrMalformed, "read pae",
			"array of shape %v does not fit in its %d byte archive entry",
			dims, limit)
	}

	var values []float64
	var err error
	switch dtype {
	case "<f4":
		values, err = readAs[float32](zr, key)
	case "<f8":
		values, err = readAs[float64](zr, key)
	case "<i4":
		values, err = readAs[int32](zr, key)
	case "<i8":
		values, err = readAs[int64](zr, key)
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(values)) != count {
		return nil, ipsae.Errorf(ipsae.ErrMalformed, "read pae",
			"read %d array values, expected %d", len(values), count)
	}

	switch len(dims) {
	case 1:
		return reshape(values)
	case 2:
		if dims[0] != dims[1] {
			return nil, ipsae.Errorf(ipsae.ErrShape, "read pae",
				"PAE array has shape %dx%d", dims[0], dims[1])
		}
		m := &ipsae.Matrix{N: dims[0], Data: values}
		if hdr.Descr.Fortran {
			transpose(m)
		}
		return m, nil
	}
	return nil, ipsae.Errorf(ipsae.ErrShape, "read pae",
		"PAE array has %d dimensions", len(dims))
}

// elements returns the number of values of an array with the given shape,
// or false if the product overflows or the values need more than limit
// bytes.
func elements(dims []int, elemSize, limit uint64) (uint64, bool) {
	count := uint64(1)
	for _, d := range dims {
		if d < 0 {
			return 0, false
		}
		hi, lo := bits.Mul64(count, uint64(d))
		if hi != 0 {
			return 0, false
		}
		count = lo
	}
	hi, size := bits.Mul64(count, elemSize)
	if hi != 0 || size > limit {
		return 0, false
	}
	return count, true
}

func readAs[T float32 | float64 | int32 | int64](zr *npz.Reader,
	key string) ([]float64, error) {

	var raw []T
	if err := zr.Read(key, &raw); err != nil {
		return nil, err
	}
	values := make([]float64, len(raw))
	for i, v := range raw {
		values[i] = float64(v)
	}
	return values, nil
}

// transpose turns a column-major square matrix into a row-major one, in
// place.
func transpose(m *ipsae.Matrix) {
	for i := 0; i < m.N; i++ {
		for j := i + 1; j < m.N; j++ {
			a, b := m.At(i, j), m.At(j, i)
			m.Set(i, j, b)
			m.Set(j, i, a)
		}
	}
}
