package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/pricetag/product"
)

func customTicket(code string) product.Product {
	return product.Product{QuickCode: code, Name: "Custom " + code, RRP: decimal.NewFromFloat(2.5)}
}

// fakeKV keeps values in memory and answers like a Redis client.
type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func storesUnderTest() map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"redis":  func() Store { return NewRedisStoreWithClient(newFakeKV(), "", 0, nil) },
	}
}

func TestStoreAddListRemoveClear(t *testing.T) {
	for name, newStore := range storesUnderTest() {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			ctx := context.Background()

			a, err := s.Add(ctx, "sid-1", customTicket("A"))
			require.NoError(t, err)
			b, err := s.Add(ctx, "sid-1", customTicket("B"))
			require.NoError(t, err)
			assert.True(t, a.IsCustom)
			assert.True(t, strings.HasPrefix(string(a.ID), "custom_"))
			assert.NotEqual(t, a.ID, b.ID)

			list, err := s.List(ctx, "sid-1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "A", list[0].QuickCode)
			assert.Equal(t, "2.50", list[0].FormatRRP())

			other, err := s.List(ctx, "sid-2")
			require.NoError(t, err)
			assert.Empty(t, other, "sessions must not share tickets")

			require.NoError(t, s.Remove(ctx, "sid-1", string(a.ID)))
			assert.ErrorIs(t, s.Remove(ctx, "sid-1", string(a.ID)), ErrTicketNotFound)
			assert.ErrorIs(t, s.Remove(ctx, "sid-2", string(b.ID)), ErrTicketNotFound)

			list, err = s.List(ctx, "sid-1")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, b.ID, list[0].ID)

			require.NoError(t, s.Clear(ctx, "sid-1"))
			list, err = s.List(ctx, "sid-1")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestMemoryStoreListIsACopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Add(ctx, "sid", customTicket("A"))
	require.NoError(t, err)

	list, _ := s.List(ctx, "sid")
	list[0].QuickCode = "changed"
	again, _ := s.List(ctx, "sid")
	assert.Equal(t, "A", again[0].QuickCode)
}

func TestRedisStoreKeysAndTTL(t *testing.T) {
	kv := newFakeKV()
	s := NewRedisStoreWithClient(kv, "test:", time.Hour, nil)
	ctx := context.Background()

	_, err := s.Add(ctx, "abc", customTicket("A"))
	require.NoError(t, err)
	assert.Contains(t, kv.data, "test:abc")
	assert.Equal(t, time.Hour, kv.ttls["test:abc"])

	list, _ := s.List(ctx, "abc")
	require.NoError(t, s.Remove(ctx, "abc", string(list[0].ID)))
	assert.NotContains(t, kv.data, "test:abc", "empty lists are deleted")
}

func TestRedisStoreDiscardsUnreadableValue(t *testing.T) {
	kv := newFakeKV()
	kv.data[defaultKeyPrefix+"sid"] = "{broken"
	s := NewRedisStoreWithClient(kv, "", 0, nil)

	list, err := s.List(context.Background(), "sid")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisStorePropagatesErrors(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	s := NewRedisStoreWithClient(kv, "", 0, nil)

	_, err := s.List(context.Background(), "sid")
	assert.ErrorContains(t, err, "connection refused")
	_, err = s.Add(context.Background(), "sid", customTicket("A"))
	assert.Error(t, err)
}
