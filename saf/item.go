package saf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const contentsFile = "contents"

// ItemDirName returns the directory name of the item for a 1-based row ordinal.
func ItemDirName(ordinal int) string {
	return fmt.Sprintf("item_%d", ordinal)
}

// ReservedName reports whether name is one of the files an item writes for itself:
// the contents listing or a metadata file.
func ReservedName(name string) bool {
	if name == contentsFile || name == "dublin_core.xml" {
		return true
	}
	return strings.HasPrefix(name, "metadata_") && strings.HasSuffix(name, ".xml")
}

// itemWriter materializes a single item directory. opened tracks which metadata
// files this item has started, so headers and closing tags are written exactly once
// no matter what else is lying in the directory. files maps every name the item
// has claimed to the kind of file holding it.
type itemWriter struct {
	dir    string
	opened map[string]string
	files  map[string]string
}

func newItemWriter(bundleDir string, ordinal int) (*itemWriter, error) {
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle directory: %w", err)
	}
	dir := filepath.Join(bundleDir, ItemDirName(ordinal))
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrItemExists)
		}
		return nil, fmt.Errorf("create item directory: %w", err)
	}
	w := &itemWriter{dir: dir, opened: make(map[string]string), files: make(map[string]string)}
	// Every item gets a contents file, even one without payload.
	if err := w.claim(contentsFile, "contents"); err != nil {
		return nil, err
	}
	if err := w.writeFile(contentsFile, "", false); err != nil {
		return nil, err
	}
	return w, nil
}

// claim reserves name in the item for a file of the given kind. Two files may
// never share a name: the later one would overwrite the earlier.
func (w *itemWriter) claim(name, kind string) error {
	if prev, ok := w.files[name]; ok {
		return fmt.Errorf("%s %q collides with %s file: %w", kind, name, prev, ErrNameCollision)
	}
	w.files[name] = kind
	return nil
}

// appendContents adds one line to the contents listing.
func (w *itemWriter) appendContents(line string) error {
	return w.writeFile(contentsFile, line+"\n", true)
}

// appendValue adds one <dcvalue> record to the metadata file of the field's schema,
// starting the file on first use.
func (w *itemWriter) appendValue(f Field, value string) error {
	line, err := valueLine(f, value)
	if err != nil {
		return fmt.Errorf("format %s value: %w", f, err)
	}
	name, started := w.opened[f.Schema]
	if !started {
		name = f.MetadataFile()
		if err := w.claim(name, "metadata"); err != nil {
			return err
		}
		w.opened[f.Schema] = name
		return w.writeFile(name, rootOpen(f.Schema)+line, false)
	}
	return w.writeFile(name, line, true)
}

// writeLicense lists the license file in contents and writes its text.
func (w *itemWriter) writeLicense(l *License) error {
	if err := w.claim(l.FileName, "license"); err != nil {
		return err
	}
	if err := w.appendContents(fmt.Sprintf("%s    bundle:%s", l.FileName, l.Bundle)); err != nil {
		return err
	}
	return w.writeFile(l.FileName, l.Text, false)
}

// close appends the closing root tag to every metadata file this item opened.
func (w *itemWriter) close() error {
	names := make([]string, 0, len(w.opened))
	for _, name := range w.opened {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.writeFile(name, rootClose+"\n", true); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes s to a file in the item directory, appending or truncating.
func (w *itemWriter) writeFile(name, s string, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	path := filepath.Join(w.dir, name)
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// dirFileSize sums the sizes of the regular files directly inside dir.
func dirFileSize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// isBlank reports whether a cell carries no value.
func isBlank(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
