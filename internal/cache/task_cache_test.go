package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	dom "Planner/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory Client so the cache is testable without a server.
type fakeRedis struct {
	mu   sync.Mutex
	vals map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{vals: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.vals[key] = string(v)
	case string:
		f.vals[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.vals[k]; ok {
			delete(f.vals, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestGetListMissReturnsNil(t *testing.T) {
	c := NewTaskCache(newFakeRedis(), time.Minute)

	list, err := c.GetList(context.Background())
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestSetListRoundTrips(t *testing.T) {
	ctx := context.Background()
	c := NewTaskCache(newFakeRedis(), time.Minute)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tasks := []dom.Task{
		{ID: "a", Title: "Buy milk", Date: "2025-03-10", Time: "18:00", CreatedAt: now, UpdatedAt: now},
		{ID: "b", Title: "Ship release", Date: "2025-03-11", Time: "10:00", Completed: true, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, c.SetList(ctx, tasks))

	got, err := c.GetList(ctx)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestInvalidateDropsList(t *testing.T) {
	ctx := context.Background()
	c := NewTaskCache(newFakeRedis(), time.Minute)

	require.NoError(t, c.SetList(ctx, []dom.Task{{ID: "a", Title: "Buy milk"}}))
	require.NoError(t, c.Invalidate(ctx))

	got, err := c.GetList(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetListCorruptPayloadErrors(t *testing.T) {
	rdb := newFakeRedis()
	rdb.vals[keyList] = "{not json"
	c := NewTaskCache(rdb, time.Minute)

	_, err := c.GetList(context.Background())
	assert.Error(t, err)
}
