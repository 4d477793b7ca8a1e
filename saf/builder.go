package saf

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// BundleBaseName is the directory name of the single bundle, and the prefix of
// numbered bundles when splitting.
const BundleBaseName = "SimpleArchiveFormat"

// License describes the license bitstream added to every item.
type License struct {
	FileName string
	Bundle   string
	Text     string
}

// Options configures a Builder.
type Options struct {
	ArchiveDir string
	PayloadDir string

	// Restrict appends a group restriction to every payload line in contents.
	Restrict bool
	Group    string

	// License, when set, adds a license file to every item.
	License *License

	Logger *log.Logger
}

// BundleSummary describes one finalized bundle.
type BundleSummary struct {
	Name      string `json:"name"`
	Items     int    `json:"items"`
	Bytes     int64  `json:"bytes"`
	Zip       string `json:"zip,omitempty"`
	ZipSHA256 string `json:"zip_sha256,omitempty"`
}

// MissingPayload is a payload name that matched no file under the payload directory.
type MissingPayload struct {
	Item int    `json:"item"`
	Name string `json:"name"`
}

// Result is what one build produced. Bundles are listed in the order they were finalized.
type Result struct {
	Bundles []BundleSummary  `json:"bundles"`
	Items   int              `json:"items"`
	Missing []MissingPayload `json:"missing,omitempty"`
}

// BundleNames returns the names of the finalized bundles.
func (r *Result) BundleNames() []string {
	names := make([]string, len(r.Bundles))
	for i, b := range r.Bundles {
		names[i] = b.Name
	}
	return names
}

// record accounts one item to a bundle, finalizing the bundle on its first item.
func (r *Result) record(bundle string, size int64) {
	r.Items++
	for i := range r.Bundles {
		if r.Bundles[i].Name == bundle {
			r.Bundles[i].Items++
			r.Bundles[i].Bytes += size
			return
		}
	}
	r.Bundles = append(r.Bundles, BundleSummary{Name: bundle, Items: 1, Bytes: size})
}

// Builder converts table rows into SAF items.
type Builder struct {
	opts     Options
	log      *log.Logger
	payloads *PayloadIndex
}

// NewBuilder validates opts and indexes the payload directory.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.ArchiveDir == "" {
		return nil, errors.New("archive directory is required")
	}
	if opts.Restrict && opts.Group == "" {
		return nil, errors.New("access restriction requires a group name")
	}
	if opts.License != nil {
		if opts.License.FileName == "" || opts.License.Bundle == "" {
			return nil, errors.New("license requires a file name and a bundle name")
		}
		if ReservedName(opts.License.FileName) {
			return nil, fmt.Errorf("license file %q: %w", opts.License.FileName, ErrNameCollision)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	b := &Builder{opts: opts, log: logger}
	if opts.PayloadDir != "" {
		idx, err := NewPayloadIndex(opts.PayloadDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("indexed payload directory", "dir", opts.PayloadDir, "names", idx.Len())
		b.payloads = idx
	}
	return b, nil
}

// Build writes every row of t as an item of a single bundle named SimpleArchiveFormat.
func (b *Builder) Build(t *Table) (*Result, error) {
	fields, err := ParseHeaders(t.Headers())
	if err != nil {
		return nil, err
	}

	res := &Result{}
	bundleDir := filepath.Join(b.opts.ArchiveDir, BundleBaseName)
	for ordinal := 1; ; ordinal++ {
		row, err := t.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		dir, err := b.writeItem(bundleDir, ordinal, fields, row, res)
		if err != nil {
			return res, err
		}
		size, err := dirFileSize(dir)
		if err != nil {
			return res, fmt.Errorf("measure %s: %w", dir, err)
		}
		res.record(BundleBaseName, size)
	}
	b.log.Info("build complete", "items", res.Items, "bundles", len(res.Bundles))
	return res, nil
}

// BuildSplit writes the rows of t into numbered bundles. After each item its bytes
// are added to a running total; once the total reaches threshold the current bundle
// is closed with that item still in it, and the next row starts bundle n+1 with the
// total back at zero. Bundle directories are only created when an item lands in them.
func (b *Builder) BuildSplit(t *Table, threshold int64) (*Result, error) {
	if threshold <= 0 {
		return nil, ErrInvalidThreshold
	}
	fields, err := ParseHeaders(t.Headers())
	if err != nil {
		return nil, err
	}

	res := &Result{}
	number := 1
	var total int64
	var inBundle int
	for ordinal := 1; ; ordinal++ {
		row, err := t.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}

		name := SplitBundleName(number)
		dir, err := b.writeItem(filepath.Join(b.opts.ArchiveDir, name), ordinal, fields, row, res)
		if err != nil {
			return res, err
		}
		size, err := dirFileSize(dir)
		if err != nil {
			return res, fmt.Errorf("measure %s: %w", dir, err)
		}
		res.record(name, size)
		total += size
		inBundle++

		if total >= threshold {
			b.log.Info("bundle full", "bundle", name, "items", inBundle,
				"size", humanize.Bytes(uint64(total)), "threshold", humanize.Bytes(uint64(threshold)))
			number++
			total = 0
			inBundle = 0
		}
	}
	b.log.Info("build complete", "items", res.Items, "bundles", len(res.Bundles))
	return res, nil
}

// SplitBundleName returns the name of the n-th bundle of a split build.
func SplitBundleName(n int) string {
	return fmt.Sprintf("%s%d", BundleBaseName, n)
}

// writeItem materializes one row as bundleDir/item_<ordinal> and returns the item path.
func (b *Builder) writeItem(bundleDir string, ordinal int, fields []Field, row []string, res *Result) (string, error) {
	if len(row) != len(fields) {
		return "", fmt.Errorf("item %d: %w: got %d cells, want %d", ordinal, ErrRowLength, len(row), len(fields))
	}
	w, err := newItemWriter(bundleDir, ordinal)
	if err != nil {
		return "", err
	}

	for i, f := range fields {
		cell := row[i]
		if isBlank(cell) {
			continue
		}
		if f.IsPayload() {
			if err := b.writePayloads(w, ordinal, cell, res); err != nil {
				return "", fmt.Errorf("item %d: %w", ordinal, err)
			}
			continue
		}
		for _, v := range splitValues(cell, false) {
			if err := w.appendValue(f, v); err != nil {
				return "", fmt.Errorf("item %d: %w", ordinal, err)
			}
		}
	}

	if b.opts.License != nil {
		if err := w.writeLicense(b.opts.License); err != nil {
			return "", fmt.Errorf("item %d: %w", ordinal, err)
		}
	}
	if err := w.close(); err != nil {
		return "", fmt.Errorf("item %d: %w", ordinal, err)
	}
	b.log.Debug("wrote item", "item", ordinal, "dir", w.dir, "schemas", len(w.opened))
	return w.dir, nil
}

// writePayloads lists each name of a filename cell in contents and copies the
// matching payload file into the item. Unmatched names are reported, not fatal.
func (b *Builder) writePayloads(w *itemWriter, ordinal int, cell string, res *Result) error {
	for _, name := range splitValues(cell, true) {
		if err := w.claim(filepath.Base(name), "payload"); err != nil {
			return err
		}
		line := name
		if b.opts.Restrict {
			line += "\tgroup:" + b.opts.Group
		}
		if err := w.appendContents(line); err != nil {
			return err
		}

		src, ok := b.lookupPayload(name)
		if !ok {
			b.log.Warn("payload file not found", "item", ordinal, "name", name, "dir", b.opts.PayloadDir)
			res.Missing = append(res.Missing, MissingPayload{Item: ordinal, Name: name})
			continue
		}
		if err := copyFile(src, filepath.Join(w.dir, filepath.Base(name))); err != nil {
			return fmt.Errorf("copy payload %s: %w", name, err)
		}
	}
	return nil
}

func (b *Builder) lookupPayload(name string) (string, bool) {
	if b.payloads == nil {
		return "", false
	}
	return b.payloads.Lookup(name)
}
