package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// OSFS is an absfs.Filer over the host filesystem, rooted at a directory.
// Names are resolved below the root; ".." cannot escape it.
type OSFS struct {
	root string
}

// NewOSFS returns a filer rooted at root. An empty root is the working
// directory.
func NewOSFS(root string) *OSFS {
	if root == "" {
		root = "."
	}
	return &OSFS{root: root}
}

var _ absfs.Filer = (*OSFS)(nil)

func (o *OSFS) path(name string) string {
	return filepath.Join(o.root, filepath.FromSlash(cleanPath(name)))
}

func (o *OSFS) Open(name string) (absfs.File, error) {
	return o.OpenFile(name, os.O_RDONLY, 0)
}

func (o *OSFS) Create(name string) (absfs.File, error) {
	return o.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (o *OSFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	f, err := os.OpenFile(o.path(name), flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (o *OSFS) Mkdir(name string, perm fs.FileMode) error {
	return os.Mkdir(o.path(name), perm)
}

// MkdirAll creates a directory and any missing parents.
func (o *OSFS) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(o.path(name), perm)
}

func (o *OSFS) Remove(name string) error {
	return os.Remove(o.path(name))
}

func (o *OSFS) Rename(oldpath, newpath string) error {
	return os.Rename(o.path(oldpath), o.path(newpath))
}

func (o *OSFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(o.path(name))
}

func (o *OSFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(o.path(name), mode)
}

func (o *OSFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return os.Chtimes(o.path(name), atime, mtime)
}

func (o *OSFS) Chown(name string, uid, gid int) error {
	return os.Chown(o.path(name), uid, gid)
}

func (o *OSFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(o.path(name))
}

func (o *OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(o.path(name))
}

func (o *OSFS) Sub(dir string) (fs.FS, error) {
	info, err := o.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "sub", Path: dir, Err: fs.ErrInvalid}
	}
	return os.DirFS(o.path(dir)), nil
}
