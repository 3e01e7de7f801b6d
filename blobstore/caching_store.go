package blobstore

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBlockSize = 64 * 1024
	defaultMaxBlocks = 1024
)

// CachingStore wraps a Store with block-level read caching. It is meant for
// remote stores where a ReadAt is a network round trip; index readers touch
// the same regions repeatedly.
//
// Writes pass through and invalidate the written blob's cached blocks.
type CachingStore struct {
	inner     Store
	blockSize int64
	maxBlocks int

	mu     sync.Mutex
	blocks map[blockKey][]byte
}

type blockKey struct {
	name  string
	block int64
}

// NewCachingStore wraps inner. blockSize defaults to 64 KiB and maxBlocks to
// 1024 when <= 0.
func NewCachingStore(inner Store, blockSize int64, maxBlocks int) *CachingStore {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	if maxBlocks <= 0 {
		maxBlocks = defaultMaxBlocks
	}
	return &CachingStore{
		inner:     inner,
		blockSize: blockSize,
		maxBlocks: maxBlocks,
		blocks:    make(map[blockKey][]byte),
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{store: s, inner: b, name: name, ctx: ctx}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.blocks {
		if k.name == name {
			delete(s.blocks, k)
		}
	}
}

func (s *CachingStore) get(k blockKey) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[k]
	return b, ok
}

func (s *CachingStore) put(k blockKey, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Crude bound: drop arbitrary entries once full. Index access patterns
	// are dense scans and hot-spot lookups; an LRU buys little here.
	for len(s.blocks) >= s.maxBlocks {
		for victim := range s.blocks {
			delete(s.blocks, victim)
			break
		}
	}
	s.blocks[k] = b
}

type cachingBlob struct {
	store *CachingStore
	inner Blob
	name  string
	ctx   context.Context
}

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	size := b.inner.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	end := off + int64(len(p))
	if end > size {
		end = size
	}
	bs := b.store.blockSize
	startBlock := off / bs
	endBlock := (end - 1) / bs

	if err := b.fill(startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		data, ok := b.store.get(blockKey{name: b.name, block: blk})
		if !ok {
			// Evicted between fill and read; fetch directly.
			var err error
			data, err = b.fetch(blk)
			if err != nil {
				return total, err
			}
		}
		blkStart := blk * bs
		from := max(off, blkStart) - blkStart
		to := min(end, blkStart+int64(len(data))) - blkStart
		if to <= from {
			break
		}
		total += copy(p[blkStart+from-off:], data[from:to])
	}
	if int64(total) < int64(len(p)) {
		return total, io.EOF
	}
	return total, nil
}

// fill fetches the missing blocks of [startBlock, endBlock] concurrently.
func (b *cachingBlob) fill(startBlock, endBlock int64) error {
	var missing []int64
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.store.get(blockKey{name: b.name, block: blk}); !ok {
			missing = append(missing, blk)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(b.ctx)
	g.SetLimit(8)
	for _, blk := range missing {
		g.Go(func() error {
			_, err := b.fetch(blk)
			return err
		})
	}
	return g.Wait()
}

// fetch reads one block from the inner blob and caches it. The final block
// of a blob may be short.
func (b *cachingBlob) fetch(blk int64) ([]byte, error) {
	bs := b.store.blockSize
	offset := blk * bs
	length := min(bs, b.inner.Size()-offset)
	if length <= 0 {
		return nil, io.EOF
	}

	data := make([]byte, length)
	n, err := b.inner.ReadAt(data, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	data = data[:n]
	b.store.put(blockKey{name: b.name, block: blk}, data)
	return data, nil
}
