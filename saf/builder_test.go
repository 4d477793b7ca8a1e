package saf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDirs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestBuild_OneItemPerRow(t *testing.T) {
	const rows = 12
	lines := []string{"dc.title,dc.date.issued"}
	for i := 1; i <= rows; i++ {
		lines = append(lines, fmt.Sprintf("Title %d,20%02d", i, i))
	}
	b, archive := newTestBuilder(t, Options{})

	res, err := b.Build(csvTable(t, lines...))
	require.NoError(t, err)

	assert.Equal(t, []string{BundleBaseName}, listDirs(t, archive))
	items := listDirs(t, filepath.Join(archive, BundleBaseName))
	require.Len(t, items, rows)
	for i := 1; i <= rows; i++ {
		dc := readFile(t, filepath.Join(archive, BundleBaseName, ItemDirName(i), "dublin_core.xml"))
		assert.Contains(t, dc, fmt.Sprintf(">Title %d<", i))
	}
	assert.Equal(t, rows, res.Items)
	assert.Equal(t, []string{BundleBaseName}, res.BundleNames())
	assert.Equal(t, rows, res.Bundles[0].Items)
}

func TestBuild_MalformedHeaderWritesNothing(t *testing.T) {
	b, archive := newTestBuilder(t, Options{})
	_, err := b.Build(csvTable(t, "dc.title,title", "a,b"))
	require.ErrorIs(t, err, ErrMalformedHeader)
	assert.Empty(t, listDirs(t, archive))
}

func TestBuild_NoRows(t *testing.T) {
	b, archive := newTestBuilder(t, Options{})
	res, err := b.Build(csvTable(t, "dc.title"))
	require.NoError(t, err)
	assert.Empty(t, res.Bundles)
	assert.Empty(t, listDirs(t, archive))
}

// splitFixture creates a payload tree with one file of each size and a table
// referencing them in order.
func splitFixture(t *testing.T, sizes ...int) (string, *Table) {
	t.Helper()
	payload := t.TempDir()
	lines := []string{"dc.title,filename"}
	for i, size := range sizes {
		name := fmt.Sprintf("file%d.bin", i+1)
		writeSized(t, filepath.Join(payload, name), size)
		lines = append(lines, fmt.Sprintf("Item %d,%s", i+1, name))
	}
	return payload, csvTable(t, lines...)
}

func TestBuildSplit_CrossingItemClosesBundle(t *testing.T) {
	// The total crosses 1,000,000 bytes on item 3, so item 3 is the last of bundle 1.
	payload, tbl := splitFixture(t, 400_000, 400_000, 400_000, 100_000)
	b, archive := newTestBuilder(t, Options{PayloadDir: payload})

	res, err := b.BuildSplit(tbl, 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, []string{"SimpleArchiveFormat1", "SimpleArchiveFormat2"}, listDirs(t, archive))
	assert.Equal(t, []string{"item_1", "item_2", "item_3"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat1")))
	assert.Equal(t, []string{"item_4"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat2")))
	assert.Equal(t, []string{"SimpleArchiveFormat1", "SimpleArchiveFormat2"}, res.BundleNames())
	assert.Equal(t, 3, res.Bundles[0].Items)
	assert.Equal(t, 1, res.Bundles[1].Items)
	assert.Equal(t, 4, res.Items)
	assert.Greater(t, res.Bundles[0].Bytes, int64(1_200_000))
	assert.FileExists(t, filepath.Join(archive, "SimpleArchiveFormat1", "item_3", "file3.bin"))
}

func TestBuildSplit_TotalRestartsInNewBundle(t *testing.T) {
	// Item 4 crosses; items 5 and 6 then start from zero and fit together.
	payload, tbl := splitFixture(t, 300_000, 300_000, 300_000, 300_000, 450_000, 450_000)
	b, archive := newTestBuilder(t, Options{PayloadDir: payload})

	res, err := b.BuildSplit(tbl, 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, []string{"item_1", "item_2", "item_3", "item_4"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat1")))
	assert.Equal(t, []string{"item_5", "item_6"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat2")))
	assert.Len(t, res.Bundles, 2)
	assert.FileExists(t, filepath.Join(archive, "SimpleArchiveFormat2", "item_5", "dublin_core.xml"))
}

func TestBuildSplit_OversizedItemsGetOwnBundle(t *testing.T) {
	payload, tbl := splitFixture(t, 2_000_000, 2_000_000, 10)
	b, archive := newTestBuilder(t, Options{PayloadDir: payload})

	res, err := b.BuildSplit(tbl, 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, []string{"SimpleArchiveFormat1", "SimpleArchiveFormat2", "SimpleArchiveFormat3"}, listDirs(t, archive))
	assert.Equal(t, []string{"item_1"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat1")))
	assert.Equal(t, []string{"item_2"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat2")))
	assert.Equal(t, []string{"item_3"}, listDirs(t, filepath.Join(archive, "SimpleArchiveFormat3")))
	assert.Len(t, res.Bundles, 3)
}

func TestBuildSplit_OrdinalsAreGlobal(t *testing.T) {
	payload, tbl := splitFixture(t, 600_000, 600_000, 600_000, 600_000)
	b, archive := newTestBuilder(t, Options{PayloadDir: payload})

	_, err := b.BuildSplit(tbl, 1_000_000)
	require.NoError(t, err)

	var all []string
	for _, bundle := range listDirs(t, archive) {
		assert.True(t, strings.HasPrefix(bundle, BundleBaseName))
		all = append(all, listDirs(t, filepath.Join(archive, bundle))...)
	}
	sort.Strings(all)
	assert.Equal(t, []string{"item_1", "item_2", "item_3", "item_4"}, all)
}

func TestBuildSplit_InvalidThreshold(t *testing.T) {
	b, _ := newTestBuilder(t, Options{})
	_, err := b.BuildSplit(csvTable(t, "dc.title", "a"), 0)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestRoundTrip_ListedPayloadsPresent(t *testing.T) {
	payload := t.TempDir()
	writeFiles(t, payload, map[string]string{
		"scans/p1.tif": "1",
		"scans/p2.tif": "2",
		"text/ocr.txt": "ocr",
	})
	b, archive := newTestBuilder(t, Options{PayloadDir: payload})
	_, err := b.Build(csvTable(t,
		"dc.title,filename",
		"One,p1.tif||p2.tif",
		"Two,ocr.txt",
	))
	require.NoError(t, err)

	for _, item := range listDirs(t, filepath.Join(archive, BundleBaseName)) {
		dir := filepath.Join(archive, BundleBaseName, item)
		for _, name := range listedFiles([]byte(readFile(t, filepath.Join(dir, "contents")))) {
			assert.FileExists(t, filepath.Join(dir, name))
		}
	}
}

func TestNewBuilder_Options(t *testing.T) {
	_, err := NewBuilder(Options{})
	assert.Error(t, err, "archive directory is required")

	_, err = NewBuilder(Options{ArchiveDir: t.TempDir(), Restrict: true})
	assert.Error(t, err, "restriction without a group")

	_, err = NewBuilder(Options{ArchiveDir: t.TempDir(), License: &License{FileName: "license.txt"}})
	assert.Error(t, err, "license without bundle")

	_, err = NewBuilder(Options{ArchiveDir: t.TempDir(), License: &License{FileName: "contents", Bundle: "LICENSE"}})
	assert.ErrorIs(t, err, ErrNameCollision)

	_, err = NewBuilder(Options{ArchiveDir: t.TempDir(), License: &License{FileName: "metadata_dc.xml", Bundle: "LICENSE"}})
	assert.ErrorIs(t, err, ErrNameCollision)

	file := filepath.Join(t.TempDir(), "file")
	writeFiles(t, filepath.Dir(file), map[string]string{"file": "x"})
	_, err = NewBuilder(Options{ArchiveDir: t.TempDir(), PayloadDir: file})
	assert.ErrorIs(t, err, ErrExpectedDirectory)
}
