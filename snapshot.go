package libosmium

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/barracuda156/libosmium/blobstore"
	"github.com/barracuda156/libosmium/mmap"
	"github.com/barracuda156/libosmium/mmapvec"
	"github.com/barracuda156/libosmium/resource"
)

type snapshotOptions struct {
	controller *resource.Controller
	logger     *Logger
	vecOpts    []mmapvec.Option
}

// SnapshotOption configures SaveSnapshot and LoadSnapshot.
type SnapshotOption func(*snapshotOptions)

// WithController budgets snapshot transfers (slots and IO rate) against the
// given controller.
func WithController(c *resource.Controller) SnapshotOption {
	return func(o *snapshotOptions) {
		o.controller = c
	}
}

// WithSnapshotLogger sets the logger for transfer outcomes. Defaults to a
// noop logger.
func WithSnapshotLogger(l *Logger) SnapshotOption {
	return func(o *snapshotOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVectorOptions forwards options to the vector constructed by
// LoadSnapshot.
func WithVectorOptions(opts ...mmapvec.Option) SnapshotOption {
	return func(o *snapshotOptions) {
		o.vecOpts = opts
	}
}

func applySnapshotOptions(opts []SnapshotOption) snapshotOptions {
	o := snapshotOptions{logger: NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SaveSnapshot streams the populated prefix of v into the blob store under
// name. The blob is the vector's persisted form: raw records, no header, so
// a later LoadSnapshot (or a direct mmapvec.NewFile on a downloaded copy)
// recovers it via the trailing-sentinel convention.
func SaveSnapshot[T comparable](ctx context.Context, store blobstore.Store, name string, v *mmapvec.Vector[T], opts ...SnapshotOption) error {
	o := applySnapshotOptions(opts)

	if err := o.controller.AcquireTransfer(ctx); err != nil {
		return err
	}
	defer o.controller.ReleaseTransfer()

	wb, err := store.Create(ctx, name)
	if err != nil {
		o.logger.LogSave(ctx, name, 0, 0, err)
		return err
	}

	var w io.Writer = wb
	if o.controller != nil {
		w = resource.NewRateLimitedWriter(ctx, wb, o.controller)
	}

	n, err := v.WriteTo(w)
	if err != nil {
		wb.Close()
		o.logger.LogSave(ctx, name, 0, n, err)
		return fmt.Errorf("libosmium: writing snapshot %s: %w", name, err)
	}
	if err := wb.Close(); err != nil {
		o.logger.LogSave(ctx, name, 0, n, err)
		return fmt.Errorf("libosmium: finishing snapshot %s: %w", name, err)
	}

	o.logger.LogSave(ctx, name, v.Size(), n, nil)
	return nil
}

// LoadSnapshot downloads the blob under name into f and opens it as a
// file-backed vector. f must be open read/write and stays owned by the
// caller; its previous content is discarded. The vector's capacity is the
// larger of capacity and the snapshot's element count.
func LoadSnapshot[T comparable](ctx context.Context, store blobstore.Store, name string, f *os.File, capacity int, empty T, opts ...SnapshotOption) (*mmapvec.Vector[T], error) {
	o := applySnapshotOptions(opts)

	if err := o.controller.AcquireTransfer(ctx); err != nil {
		return nil, err
	}
	defer o.controller.ReleaseTransfer()

	blob, err := store.Open(ctx, name)
	if err != nil {
		o.logger.LogLoad(ctx, name, 0, err)
		return nil, err
	}
	defer blob.Close()

	if err := f.Truncate(0); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var r io.Reader = io.NewSectionReader(blob, 0, blob.Size())
	if o.controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.controller)
	}
	if _, err := io.Copy(f, r); err != nil {
		o.logger.LogLoad(ctx, name, 0, err)
		return nil, fmt.Errorf("libosmium: downloading snapshot %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}

	size, err := mmap.FileSize[T](int(f.Fd()))
	if err != nil {
		o.logger.LogLoad(ctx, name, 0, err)
		return nil, err
	}
	if capacity < size {
		capacity = size
	}

	v, err := mmapvec.NewFile(f, capacity, size, empty, o.vecOpts...)
	if err != nil {
		o.logger.LogLoad(ctx, name, 0, err)
		return nil, err
	}
	o.logger.LogLoad(ctx, name, v.Size(), nil)
	return v, nil
}
