package previewcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/barcodex/internal/db"
	"github.com/kailas-cloud/barcodex/internal/domain/render"
)

type mockPreviewer struct {
	result *render.Preview
	err    error
	calls  int
}

func (m *mockPreviewer) Preview(_ context.Context, _ render.PreviewRequest) (*render.Preview, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestCachedPreviewer(t *testing.T, inner *mockPreviewer) (*CachedPreviewer, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cp := New(inner, ms, "test:", time.Hour, nil, zap.NewNop())
	return cp, ms
}
