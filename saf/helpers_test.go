package saf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFiles creates each file under dir with the given content, creating parents.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// writeSized creates a file of exactly size bytes.
func writeSized(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func csvTable(t *testing.T, lines ...string) *Table {
	t.Helper()
	tbl, err := NewCSVTable(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	return tbl
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func newTestBuilder(t *testing.T, opts Options) (*Builder, string) {
	t.Helper()
	if opts.ArchiveDir == "" {
		opts.ArchiveDir = t.TempDir()
	}
	b, err := NewBuilder(opts)
	require.NoError(t, err)
	return b, opts.ArchiveDir
}
