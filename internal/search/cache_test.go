package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Khateeb-Urrahman/ListTube/internal/logging"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

func setupCache(t *testing.T, next Lookup) (*Cached, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCached(next, rdb, time.Minute, logging.Discard()), mr
}

func TestCachedHitsRedisOnSecondCall(t *testing.T) {
	next := new(MockLookup)
	hits := []media.Item{{ID: "1", Title: "Next.js 16 Crash Course"}}
	next.On("Search", mock.Anything, "Next").Return(hits, nil).Once()

	c, mr := setupCache(t, next)
	ctx := context.Background()

	first, err := c.Search(ctx, "Next")
	require.NoError(t, err)
	assert.Equal(t, hits, first)
	assert.True(t, mr.Exists("listtube:search:Next"))
	assert.Equal(t, time.Minute, mr.TTL("listtube:search:Next"))

	second, err := c.Search(ctx, "Next")
	require.NoError(t, err)
	assert.Equal(t, hits, second)
	next.AssertNumberOfCalls(t, "Search", 1)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	next := new(MockLookup)
	next.On("Search", mock.Anything, "boom").Return(nil, errors.New("upstream down"))

	c, mr := setupCache(t, next)
	_, err := c.Search(context.Background(), "boom")
	assert.Error(t, err)
	assert.False(t, mr.Exists("listtube:search:boom"))
}

func TestCachedFallsThroughWhenRedisDown(t *testing.T) {
	next := new(MockLookup)
	hits := []media.Item{{ID: "2"}}
	next.On("Search", mock.Anything, "css").Return(hits, nil)

	c, mr := setupCache(t, next)
	mr.Close()

	items, err := c.Search(context.Background(), "css")
	require.NoError(t, err)
	assert.Equal(t, hits, items)
}

func TestCachedSkipsBlankQueries(t *testing.T) {
	next := new(MockLookup)
	next.On("Search", mock.Anything, " ").Return([]media.Item{}, nil)

	c, mr := setupCache(t, next)
	items, err := c.Search(context.Background(), " ")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, mr.Keys())
}

func TestCachedKeepsVideoIDCase(t *testing.T) {
	c, mr := setupCache(t, NewService(nil, nil, logging.Discard()))
	ctx := context.Background()

	upper, err := c.Search(ctx, "https://youtu.be/AbCdEfGhIjK")
	require.NoError(t, err)
	require.Len(t, upper, 1)
	assert.Equal(t, "youtube_AbCdEfGhIjK", upper[0].ID)

	lower, err := c.Search(ctx, "https://youtu.be/abcdefghijk")
	require.NoError(t, err)
	require.Len(t, lower, 1)
	assert.Equal(t, "youtube_abcdefghijk", lower[0].ID)

	assert.Len(t, mr.Keys(), 2)
}
