package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

// cleanPath normalizes a path for storage and lookup. Absolute and relative
// spellings of the same path map to one key; the root is ".".
func cleanPath(name string) string {
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return name
}

// memNode holds the contents shared by every handle of one file.
type memNode struct {
	mu      sync.RWMutex
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// MemFS is an in-memory absfs.Filer. Directories are tracked explicitly: a
// file can only be created inside an existing directory.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memNode
	dirs  map[string]time.Time
}

// NewMemFS creates an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memNode),
		dirs:  map[string]time.Time{".": time.Now()},
	}
}

var _ absfs.Filer = (*MemFS)(nil)

func (m *MemFS) Open(name string) (absfs.File, error) {
	return m.OpenFile(name, os.O_RDONLY, 0)
}

func (m *MemFS) Create(name string) (absfs.File, error) {
	return m.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (m *MemFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cleanPath(name)

	if _, ok := m.dirs[key]; ok {
		if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
		}
		return &memDir{fsys: m, name: key}, nil
	}

	node, exists := m.files[key]
	if !exists {
		if flag&os.O_CREATE == 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		if _, ok := m.dirs[path.Dir(key)]; !ok {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		node = &memNode{mode: perm &^ fs.ModeType, modTime: time.Now()}
		m.files[key] = node
	} else if flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	}

	if flag&os.O_TRUNC != 0 && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		node.mu.Lock()
		node.data = node.data[:0]
		node.modTime = time.Now()
		node.mu.Unlock()
	}

	f := &memFile{
		node:     node,
		name:     key,
		readable: flag&os.O_WRONLY == 0,
		writable: flag&(os.O_WRONLY|os.O_RDWR) != 0,
		append:   flag&os.O_APPEND != 0,
	}
	return f, nil
}

func (m *MemFS) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cleanPath(name)
	if _, ok := m.dirs[key]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if _, ok := m.files[key]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if _, ok := m.dirs[path.Dir(key)]; !ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrNotExist}
	}
	m.dirs[key] = time.Now()
	return nil
}

// MkdirAll creates a directory and any missing parents.
func (m *MemFS) MkdirAll(name string, perm fs.FileMode) error {
	key := cleanPath(name)
	if key == "." {
		return nil
	}
	if err := m.MkdirAll(path.Dir(key), perm); err != nil {
		return err
	}
	err := m.Mkdir(key, perm)
	if errors.Is(err, fs.ErrExist) {
		m.mu.RLock()
		_, isDir := m.dirs[key]
		m.mu.RUnlock()
		if isDir {
			return nil
		}
	}
	return err
}

func (m *MemFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cleanPath(name)
	if _, ok := m.files[key]; ok {
		delete(m.files, key)
		return nil
	}
	if _, ok := m.dirs[key]; ok && key != "." {
		if len(m.childrenLocked(key)) > 0 {
			return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
		}
		delete(m.dirs, key)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

// Rename moves a file. Renaming directories is not supported.
func (m *MemFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, to := cleanPath(oldpath), cleanPath(newpath)
	node, ok := m.files[from]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}
	if _, ok := m.dirs[path.Dir(to)]; !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}
	if _, ok := m.dirs[to]; ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	m.files[to] = node
	if from != to {
		delete(m.files, from)
	}
	return nil
}

func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := cleanPath(name)
	if info, ok := m.statLocked(key); ok {
		return info, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemFS) statLocked(key string) (*memFileInfo, bool) {
	if node, ok := m.files[key]; ok {
		node.mu.RLock()
		defer node.mu.RUnlock()
		return &memFileInfo{
			name:    path.Base(key),
			size:    int64(len(node.data)),
			mode:    node.mode,
			modTime: node.modTime,
		}, true
	}
	if mt, ok := m.dirs[key]; ok {
		return &memFileInfo{name: path.Base(key), mode: fs.ModeDir | 0o755, modTime: mt}, true
	}
	return nil, false
}

// childrenLocked returns the sorted infos of the direct children of dir.
func (m *MemFS) childrenLocked(dir string) []fs.FileInfo {
	var infos []fs.FileInfo
	add := func(key string) {
		if key == "." || path.Dir(key) != dir {
			return
		}
		if info, ok := m.statLocked(key); ok {
			infos = append(infos, info)
		}
	}
	for key := range m.files {
		add(key)
	}
	for key := range m.dirs {
		add(key)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos
}

func (m *MemFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := cleanPath(name)
	if _, ok := m.dirs[key]; !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	infos := m.childrenLocked(key)
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	node, ok := m.files[cleanPath(name)]
	m.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	node.mu.RLock()
	defer node.mu.RUnlock()
	return append([]byte(nil), node.data...), nil
}

// Sub returns an io/fs view of the subtree rooted at dir.
func (m *MemFS) Sub(dir string) (fs.FS, error) {
	key := cleanPath(dir)
	m.mu.RLock()
	_, ok := m.dirs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "sub", Path: dir, Err: fs.ErrNotExist}
	}
	return &ioFS{fsys: m, root: key}, nil
}

func (m *MemFS) Chmod(name string, mode fs.FileMode) error {
	return m.touch("chmod", name, func(n *memNode) { n.mode = mode &^ fs.ModeType })
}

func (m *MemFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return m.touch("chtimes", name, func(n *memNode) { n.modTime = mtime })
}

// Chown is a no-op apart from the existence check.
func (m *MemFS) Chown(name string, uid, gid int) error {
	return m.touch("chown", name, func(*memNode) {})
}

func (m *MemFS) touch(op, name string, fn func(*memNode)) error {
	m.mu.RLock()
	key := cleanPath(name)
	node, ok := m.files[key]
	_, isDir := m.dirs[key]
	m.mu.RUnlock()
	if isDir {
		return nil
	}
	if !ok {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	node.mu.Lock()
	fn(node)
	node.mu.Unlock()
	return nil
}

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memFileInfo) Sys() any           { return nil }

// memFile is one open handle of a memNode with its own offset.
type memFile struct {
	mu       sync.Mutex
	node     *memNode
	name     string
	pos      int64
	closed   bool
	readable bool
	writable bool
	append   bool
}

func (f *memFile) Name() string { return f.name }

func (f *memFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fs.ErrClosed
	}
	if !f.readable {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrPermission}
	}
	n, err := f.readAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "readat", Path: f.name, Err: errors.New("negative offset")}
	}
	n, err := f.readAt(p, off)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (f *memFile) readAt(p []byte, off int64) (int, error) {
	f.node.mu.RLock()
	defer f.node.mu.RUnlock()
	if off >= int64(len(f.node.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	return copy(p, f.node.data[off:]), nil
}

func (f *memFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fs.ErrClosed
	}
	if f.append {
		f.node.mu.RLock()
		f.pos = int64(len(f.node.data))
		f.node.mu.RUnlock()
	}
	n, err := f.writeAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "writeat", Path: f.name, Err: errors.New("negative offset")}
	}
	return f.writeAt(p, off)
}

func (f *memFile) writeAt(p []byte, off int64) (int, error) {
	if !f.writable {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: fs.ErrPermission}
	}
	f.node.mu.Lock()
	defer f.node.mu.Unlock()
	end := int(off) + len(p)
	if end > len(f.node.data) {
		if end > cap(f.node.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, f.node.data)
			f.node.data = grown
		} else {
			f.node.data = f.node.data[:end]
		}
	}
	n := copy(f.node.data[off:], p)
	f.node.modTime = time.Now()
	return n, nil
}

func (f *memFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fs.ErrClosed
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.pos + offset
	case io.SeekEnd:
		f.node.mu.RLock()
		pos = int64(len(f.node.data)) + offset
		f.node.mu.RUnlock()
	default:
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}
	if pos < 0 {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}
	f.pos = pos
	return pos, nil
}

func (f *memFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fs.ErrClosed
	}
	if !f.writable {
		return &fs.PathError{Op: "truncate", Path: f.name, Err: fs.ErrPermission}
	}
	if size < 0 {
		return &fs.PathError{Op: "truncate", Path: f.name, Err: fs.ErrInvalid}
	}
	f.node.mu.Lock()
	defer f.node.mu.Unlock()
	if size <= int64(len(f.node.data)) {
		f.node.data = f.node.data[:size]
	} else {
		f.node.data = append(f.node.data, make([]byte, int(size)-len(f.node.data))...)
	}
	f.node.modTime = time.Now()
	return nil
}

func (f *memFile) Stat() (fs.FileInfo, error) {
	f.node.mu.RLock()
	defer f.node.mu.RUnlock()
	return &memFileInfo{
		name:    path.Base(f.name),
		size:    int64(len(f.node.data)),
		mode:    f.node.mode,
		modTime: f.node.modTime,
	}, nil
}

func (f *memFile) Sync() error { return nil }

func (f *memFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fs.ErrClosed
	}
	f.closed = true
	return nil
}

func (f *memFile) Readdir(int) ([]fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "readdir", Path: f.name, Err: fs.ErrInvalid}
}

func (f *memFile) Readdirnames(int) ([]string, error) {
	return nil, &fs.PathError{Op: "readdirnames", Path: f.name, Err: fs.ErrInvalid}
}

func (f *memFile) ReadDir(int) ([]fs.DirEntry, error) {
	return nil, &fs.PathError{Op: "readdir", Path: f.name, Err: fs.ErrInvalid}
}

// memDir is an open directory handle. The listing is taken on the first
// read and consumed in order.
type memDir struct {
	fsys    *MemFS
	name    string
	entries []fs.FileInfo
	loaded  bool
}

func (d *memDir) load() {
	if d.loaded {
		return
	}
	d.fsys.mu.RLock()
	d.entries = d.fsys.childrenLocked(d.name)
	d.fsys.mu.RUnlock()
	d.loaded = true
}

func (d *memDir) next(n int) ([]fs.FileInfo, error) {
	d.load()
	if n <= 0 {
		out := d.entries
		d.entries = nil
		return out, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	if n > len(d.entries) {
		n = len(d.entries)
	}
	out := d.entries[:n]
	d.entries = d.entries[n:]
	return out, nil
}

func (d *memDir) Readdir(n int) ([]fs.FileInfo, error) {
	return d.next(n)
}

func (d *memDir) Readdirnames(n int) ([]string, error) {
	infos, err := d.next(n)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, err
}

func (d *memDir) ReadDir(n int) ([]fs.DirEntry, error) {
	infos, err := d.next(n)
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, err
}

func (d *memDir) Stat() (fs.FileInfo, error) {
	d.fsys.mu.RLock()
	defer d.fsys.mu.RUnlock()
	if info, ok := d.fsys.statLocked(d.name); ok {
		return info, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: d.name, Err: fs.ErrNotExist}
}

func (d *memDir) Name() string { return d.name }
func (d *memDir) Close() error { return nil }
func (d *memDir) Sync() error  { return nil }

func (d *memDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) ReadAt([]byte, int64) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) Write([]byte) (int, error) {
	return 0, &fs.PathError{Op: "write", Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) WriteAt([]byte, int64) (int, error) {
	return 0, &fs.PathError{Op: "write", Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) WriteString(string) (int, error) {
	return 0, &fs.PathError{Op: "write", Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) Seek(int64, int) (int64, error) {
	return 0, &fs.PathError{Op: "seek", Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) Truncate(int64) error {
	return &fs.PathError{Op: "truncate", Path: d.name, Err: fs.ErrInvalid}
}

// ioFS adapts a MemFS subtree to io/fs.
type ioFS struct {
	fsys *MemFS
	root string
}

func (s *ioFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := s.fsys.Open(path.Join(s.root, name))
	if err != nil {
		return nil, err
	}
	return f, nil
}
