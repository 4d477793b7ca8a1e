package saf

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Package zips every finalized bundle that exists as a directory under root into
// root/<bundle>.zip. Directories not named in bundles are left alone. The bundle
// directories are kept. It returns the paths of the written archives.
func Package(root string, bundles []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read archive directory: %w", err)
	}
	var written []string
	for _, e := range entries {
		if !e.IsDir() || !slices.Contains(bundles, e.Name()) {
			continue
		}
		dest := filepath.Join(root, e.Name()+".zip")
		if err := CompressDirectoryToDest(filepath.Join(root, e.Name()), dest); err != nil {
			return written, fmt.Errorf("package %s: %w", e.Name(), err)
		}
		written = append(written, dest)
	}
	return written, nil
}

// CompressDirectoryToDest writes the full tree under path into a zip archive at dest.
// Entry names are relative to path and use forward slashes; directories get their
// own entries so empty items survive the round trip.
func CompressDirectoryToDest(path string, dest string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrExpectedDirectory
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	w := zip.NewWriter(file)
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == path {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		return addToZip(w, p, filepath.ToSlash(rel), d)
	})
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return file.Close()
}

func addToZip(w *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	if d.IsDir() {
		header.Name += "/"
		_, err = w.CreateHeader(header)
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	header.Method = zip.Deflate

	writer, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(writer, f)
	return err
}
