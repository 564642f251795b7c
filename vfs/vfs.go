// Package vfs provides the absfs filers configuration objects and scene
// archives are stored on: an in-memory filer for tests and tools, and a
// rooted filer over the host filesystem.
package vfs

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/absfs/absfs"
)

// ReadFile reads the whole named file from fsys.
func ReadFile(fsys absfs.Filer, name string) ([]byte, error) {
	f, err := fsys.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		buf.Grow(int(info.Size()))
	}
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, fmt.Errorf("vfs: read %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to the named file, creating or truncating it.
// The file is closed before WriteFile returns and close errors are reported.
func WriteFile(fsys absfs.Filer, name string, data []byte, perm fs.FileMode) error {
	f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("vfs: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("vfs: close %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name exists in fsys.
func Exists(fsys absfs.Filer, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}
