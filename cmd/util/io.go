// Package util holds the file handling shared by the ipsae commands.
package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadLines returns every line of r with surrounding white space removed.
func ReadLines(r io.Reader) ([]string, error) {
	buf := bufio.NewReader(r)
	lines := make([]string, 0)
	for {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("could not read line: %w", err)
		}
		if err == io.EOF && len(line) == 0 {
			break
		}
		lines = append(lines, strings.TrimSpace(line))
		if err == io.EOF {
			break
		}
	}
	return lines, nil
}

func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file '%s': %w", path, err)
	}
	return f, nil
}

// CreateFile creates path, making its parent directories as needed.
func CreateFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create directory '%s': %w",
				dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create file '%s': %w", path, err)
	}
	return f, nil
}
