package saf

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// PayloadIndex maps payload file names to the first file with that name found
// under a source tree. Walk order is lexical, so the first match is deterministic.
type PayloadIndex struct {
	root  string
	paths map[string]string
}

// NewPayloadIndex walks root and indexes every regular file by base name.
// Names are NFC-normalized so decomposed names written by some filesystems
// still match the composed names typed into a spreadsheet.
func NewPayloadIndex(root string) (*PayloadIndex, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("payload directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("payload directory %s: %w", root, ErrExpectedDirectory)
	}

	idx := &PayloadIndex{root: root, paths: make(map[string]string)}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		key := norm.NFC.String(d.Name())
		if _, seen := idx.paths[key]; !seen {
			idx.paths[key] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk payload directory %s: %w", root, err)
	}
	return idx, nil
}

// Lookup returns the path of the first file named name.
func (p *PayloadIndex) Lookup(name string) (string, bool) {
	path, ok := p.paths[norm.NFC.String(name)]
	return path, ok
}

// Len returns the number of distinct file names indexed.
func (p *PayloadIndex) Len() int {
	return len(p.paths)
}

// copyFile copies src to dst, keeping the source mode and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
