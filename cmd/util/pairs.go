package util

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/ipsae/batch"
	"github.com/BurntSushi/ipsae/ipsae"
)

// ParsePair splits a "STRUCTURE:PAE" argument, or a line holding the two
// paths separated by white space, into a job.
func ParsePair(s string) (batch.Job, error) {
	if fields := strings.Fields(s); len(fields) == 2 {
		return batch.Job{Structure: fields[0], PAE: fields[1]}, nil
	}
	structure, paeFile, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || structure == "" || paeFile == "" {
		return batch.Job{}, fmt.Errorf(
			"'%s' is not of the form STRUCTURE:PAE", s)
	}
	return batch.Job{Structure: structure, PAE: paeFile}, nil
}

// ReadPairs reads one job per line from r. Blank lines and lines starting
// with '#' are skipped.
func ReadPairs(r io.Reader) ([]batch.Job, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	jobs := make([]batch.Job, 0, len(lines))
	for i, line := range lines {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		job, err := ParsePair(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// OutputName returns the interchange file name for a structure scored with
// the given cutoffs: "<stem>_<pae cutoff>_<distance cutoff>.json" in dir,
// where stem is the structure's base name without its extension.
func OutputName(dir, structure string, cutoffs ipsae.Cutoffs) string {
	name := fmt.Sprintf("%s_%s_%s.json", stem(structure),
		formatCutoff(cutoffs.PAE), formatCutoff(cutoffs.Distance))
	return filepath.Join(dir, name)
}

func stem(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		base = base[:len(base)-3]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func formatCutoff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
