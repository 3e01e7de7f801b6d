package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/barracuda156/libosmium/mmap"
)

// LocalStore implements Store on the local file system. Reads are memory
// mapped, which is the cheapest way to serve random access into large index
// files; writes go to a temp file renamed into place on Close.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, name)
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &localBlob{f: f}, nil
	}

	region, err := mmap.MapFileReadOnly[byte](int(f.Fd()), int(size))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &localBlob{f: f, region: region}, nil
}

// Create creates a blob. The data lands in a temp file that replaces the
// target atomically on Close.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	target := s.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{tmp: tmp, target: target}, nil
}

// Put writes a blob in one shot, atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	wb, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := wb.Write(data); err != nil {
		wb.Close()
		return err
	}
	return wb.Close()
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns blob names under the root with the given prefix, sorted.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	f      *os.File
	region *mmap.Region[byte] // nil for empty files
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := b.data()
	if off < 0 || off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *localBlob) Close() error {
	var err error
	if b.region != nil {
		err = b.region.Unmap()
		b.region = nil
	}
	if closeErr := b.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (b *localBlob) Size() int64 {
	return int64(len(b.data()))
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.data(), nil
}

func (b *localBlob) data() []byte {
	if b.region == nil {
		return nil
	}
	return b.region.Bytes()
}

type localWritableBlob struct {
	tmp    *os.File
	target string
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

func (w *localWritableBlob) Sync() error {
	return w.tmp.Sync()
}

func (w *localWritableBlob) Close() error {
	name := w.tmp.Name()
	if err := w.tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, w.target); err != nil {
		os.Remove(name)
		return fmt.Errorf("blobstore: replacing %s: %w", w.target, err)
	}
	return nil
}
