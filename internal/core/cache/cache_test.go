package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tier struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// 指向一个没有 redis 的端口：读写都失败，必须回源
func downCache() *Cache { return New("127.0.0.1:1", "", 0) }

func TestGetOrLoadJSON_FallsBackWhenRedisDown(t *testing.T) {
	c := downCache()
	defer c.Close()

	calls := 0
	got, err := GetOrLoadJSON(c, context.Background(), "settings:global", time.Minute, func(context.Context) (*tier, error) {
		calls++
		return &tier{Min: 100000, Max: 199999}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, &tier{Min: 100000, Max: 199999}, got)
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadJSON_PropagatesLoaderError(t *testing.T) {
	c := downCache()
	defer c.Close()

	boom := errors.New("store down")
	_, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*tier, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGetOrLoadJSON_NilValue(t *testing.T) {
	c := downCache()
	defer c.Close()

	got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*tier, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}
