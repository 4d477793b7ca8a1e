package browse

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

const zipExt = ".zip"

// FS serves the bundle zips of one archive root.
type FS struct {
	ArchiveDir string

	mu       sync.Mutex
	archives map[string]*zip.ReadCloser
}

var (
	_ fusefs.FS                 = (*FS)(nil)
	_ fusefs.NodeStringLookuper = (*Root)(nil)
	_ fusefs.HandleReadDirAller = (*Root)(nil)
	_ fusefs.NodeStringLookuper = (*Dir)(nil)
	_ fusefs.HandleReadDirAller = (*Dir)(nil)
	_ fusefs.HandleReadAller    = (*File)(nil)
)

// NewFS creates a browser for the zips directly under archiveDir.
func NewFS(archiveDir string) *FS {
	return &FS{
		ArchiveDir: archiveDir,
		archives:   make(map[string]*zip.ReadCloser),
	}
}

// Root returns the root directory node
func (f *FS) Root() (fusefs.Node, error) {
	return &Root{fs: f}, nil
}

// Close releases every opened zip.
func (f *FS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, rc := range f.archives {
		if err := rc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
		delete(f.archives, name)
	}
	return errors.Join(errs...)
}

// archive returns the cached reader for bundle, opening it on first use.
func (f *FS) archive(bundle string) (*zip.Reader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rc, ok := f.archives[bundle]; ok {
		return &rc.Reader, nil
	}
	rc, err := zip.OpenReader(filepath.Join(f.ArchiveDir, bundle+zipExt))
	if err != nil {
		return nil, fmt.Errorf("open bundle %s: %w", bundle, err)
	}
	f.archives[bundle] = rc
	return &rc.Reader, nil
}

// Root lists one directory per bundle zip.
type Root struct {
	fs *FS
}

// Attr returns root directory attributes
func (r *Root) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0o555
	if info, err := os.Stat(r.fs.ArchiveDir); err == nil {
		a.Mtime = info.ModTime()
		a.Ctime = info.ModTime()
	}
	return nil
}

// Lookup resolves a bundle name to the root of its zip.
func (r *Root) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	info, err := os.Stat(filepath.Join(r.fs.ArchiveDir, name+zipExt))
	if err != nil || !info.Mode().IsRegular() {
		return nil, syscall.ENOENT
	}
	zr, err := r.fs.archive(name)
	if err != nil {
		return nil, syscall.EIO
	}
	return &Dir{
		fsys:  zr,
		path:  ".",
		inode: fusefs.GenerateDynamicInode(1, name),
		mtime: info.ModTime(),
	}, nil
}

// ReadDirAll lists the bundle zips of the archive root.
func (r *Root) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := os.ReadDir(r.fs.ArchiveDir)
	if err != nil {
		return nil, syscall.EIO
	}
	var dirents []fuse.Dirent
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), zipExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), zipExt)
		dirents = append(dirents, fuse.Dirent{
			Inode: fusefs.GenerateDynamicInode(1, name),
			Name:  name,
			Type:  fuse.DT_Dir,
		})
	}
	return dirents, nil
}

// Dir is a directory inside a bundle zip.
type Dir struct {
	fsys  fs.FS
	path  string
	inode uint64
	mtime time.Time
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = d.inode
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.mtime
	a.Ctime = d.mtime
	return nil
}

// Lookup resolves file/directory names to nodes
func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	p := path.Join(d.path, name)
	info, err := fs.Stat(d.fsys, p)
	if err != nil {
		return nil, syscall.ENOENT
	}
	inode := fusefs.GenerateDynamicInode(d.inode, name)
	if info.IsDir() {
		mtime := info.ModTime()
		if mtime.IsZero() {
			mtime = d.mtime
		}
		return &Dir{fsys: d.fsys, path: p, inode: inode, mtime: mtime}, nil
	}
	return &File{fsys: d.fsys, path: p, inode: inode, info: info}, nil
}

// ReadDirAll lists the entries of the directory.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := fs.ReadDir(d.fsys, d.path)
	if err != nil {
		return nil, syscall.ENOENT
	}
	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: fusefs.GenerateDynamicInode(d.inode, e.Name()),
			Name:  e.Name(),
			Type:  typ,
		})
	}
	return dirents, nil
}

// File is a regular file inside a bundle zip.
type File struct {
	fsys  fs.FS
	path  string
	inode uint64
	info  fs.FileInfo
}

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.inode
	a.Mode = 0o444
	a.Size = uint64(f.info.Size())
	a.Mtime = f.info.ModTime()
	a.Ctime = f.info.ModTime()
	return nil
}

// ReadAll reads the entire file content
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	data, err := fs.ReadFile(f.fsys, f.path)
	if err != nil {
		return nil, syscall.EIO
	}
	return data, nil
}
