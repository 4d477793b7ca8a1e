package saf

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dendrascience/csv2saf/version"
	"github.com/google/uuid"
)

// ManifestName is the file the build record is written to, inside the archive root.
const ManifestName = "saf_manifest.json"

// Manifest records what one build produced.
type Manifest struct {
	RunID          string           `json:"run_id"`
	Version        string           `json:"version"`
	Created        time.Time        `json:"created"`
	Source         string           `json:"source"`
	Split          bool             `json:"split"`
	ThresholdBytes int64            `json:"threshold_bytes,omitempty"`
	Items          int              `json:"items"`
	Bundles        []BundleSummary  `json:"bundles"`
	Missing        []MissingPayload `json:"missing,omitempty"`
}

// NewManifest creates a manifest for res with a fresh run id.
func NewManifest(source string, threshold int64, res *Result) Manifest {
	return Manifest{
		RunID:          uuid.New().String(),
		Version:        version.GetVersion(),
		Created:        time.Now().UTC(),
		Source:         source,
		Split:          threshold > 0,
		ThresholdBytes: threshold,
		Items:          res.Items,
		Bundles:        res.Bundles,
		Missing:        res.Missing,
	}
}

// BundleNames returns the names of the finalized bundles.
func (m Manifest) BundleNames() []string {
	names := make([]string, len(m.Bundles))
	for i, b := range m.Bundles {
		names[i] = b.Name
	}
	return names
}

// RecordZips fills in the archive path and checksum of every packaged bundle.
// Paths are stored relative to root.
func (m *Manifest) RecordZips(root string, zips []string) error {
	for _, z := range zips {
		name := filepath.Base(z)
		name = name[:len(name)-len(filepath.Ext(name))]
		for i := range m.Bundles {
			if m.Bundles[i].Name != name {
				continue
			}
			sum, err := GetFileHash(z)
			if err != nil {
				return fmt.Errorf("checksum %s: %w", z, err)
			}
			rel, err := filepath.Rel(root, z)
			if err != nil {
				rel = z
			}
			m.Bundles[i].Zip = filepath.ToSlash(rel)
			m.Bundles[i].ZipSHA256 = sum
		}
	}
	return nil
}

// Save writes the manifest to root/saf_manifest.json.
func (m Manifest) Save(root string) error {
	return WriteJSONFile(filepath.Join(root, ManifestName), m)
}

// ReadManifest loads the manifest of the archive at root.
func ReadManifest(root string) (Manifest, error) {
	var m Manifest
	f, err := os.Open(filepath.Join(root, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return m, fmt.Errorf("%s: %w", root, ErrNoManifest)
	}
	if err != nil {
		return m, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// WriteJSONFile writes any value as indented JSON to the specified file path.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// GetFileHash returns the hex SHA-256 of the file at path.
func GetFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
