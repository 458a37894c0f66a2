package artifacts

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DualWriteStore fans Put and Delete out to two backends concurrently
// via errgroup, per SPEC_FULL.md's storage.dual_write option; the
// primary backend alone serves the read-side calls (Get/Exists/GetURL)
// since those need one authoritative answer, not two.
type DualWriteStore struct {
	primary   Store
	secondary Store
}

// NewDualWriteStore wraps primary and secondary so every Put is written
// to both.
func NewDualWriteStore(primary, secondary Store) *DualWriteStore {
	return &DualWriteStore{primary: primary, secondary: secondary}
}

func (s *DualWriteStore) Put(ctx context.Context, key string, data []byte) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.primary.Put(ctx, key, data) })
	g.Go(func() error { return s.secondary.Put(ctx, key, data) })
	return g.Wait()
}

func (s *DualWriteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.primary.Get(ctx, key)
}

func (s *DualWriteStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.primary.Exists(ctx, key)
}

func (s *DualWriteStore) Delete(ctx context.Context, key string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.primary.Delete(ctx, key) })
	g.Go(func() error { return s.secondary.Delete(ctx, key) })
	return g.Wait()
}

func (s *DualWriteStore) GetURL(key string) string {
	return s.primary.GetURL(key)
}
