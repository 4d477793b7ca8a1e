package saf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPayloadIndex_FirstMatchInWalkOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b/report.pdf":   "second",
		"a/x/report.pdf": "first",
		"c.txt":          "c",
	})

	idx, err := NewPayloadIndex(dir)
	if err != nil {
		t.Fatalf("NewPayloadIndex failed: %v", err)
	}
	got, ok := idx.Lookup("report.pdf")
	if !ok {
		t.Fatal("report.pdf not found")
	}
	if want := filepath.Join(dir, "a", "x", "report.pdf"); got != want {
		t.Errorf("Lookup = %s, want %s", got, want)
	}
	if _, ok := idx.Lookup("missing.pdf"); ok {
		t.Error("missing.pdf should not be found")
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
}

func TestPayloadIndex_NormalizesUnicode(t *testing.T) {
	dir := t.TempDir()
	// "café" with a combining acute accent, as some filesystems store it.
	decomposed := "cafe\u0301.txt"
	writeFiles(t, dir, map[string]string{decomposed: "x"})

	idx, err := NewPayloadIndex(dir)
	if err != nil {
		t.Fatalf("NewPayloadIndex failed: %v", err)
	}
	if _, ok := idx.Lookup("caf\u00e9.txt"); !ok {
		t.Error("composed name should match decomposed file")
	}
}

func TestCopyFile_PreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o640); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2020, 5, 17, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile failed: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
	}
	if b, _ := os.ReadFile(dst); string(b) != "payload" {
		t.Errorf("content = %q", b)
	}
}
