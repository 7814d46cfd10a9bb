package cachestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type authorMeta struct {
	Name      string
	PostKarma int64
}

func TestMemCacheStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCacheStore(10, time.Hour)

	v, err := cs.Get(ctx, "author", "alice")
	assert.NoError(err)
	assert.Empty(v)

	assert.NoError(cs.Set(ctx, "author", "alice", "value"))
	v, err = cs.Get(ctx, "author", "alice")
	assert.NoError(err)
	assert.Equal("value", v)

	// namespaces are separate
	v, err = cs.Get(ctx, "notes", "alice")
	assert.NoError(err)
	assert.Empty(v)

	assert.NoError(cs.Purge(ctx, "author", "alice"))
	v, err = cs.Get(ctx, "author", "alice")
	assert.NoError(err)
	assert.Empty(v)
}

func TestCacheJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCacheStore(10, time.Hour)

	miss, err := GetJSON[authorMeta](ctx, cs, "author", "bob")
	assert.NoError(err)
	assert.Nil(miss)

	assert.NoError(SetJSON(ctx, cs, "author", "bob", authorMeta{Name: "bob", PostKarma: 42}))
	hit, err := GetJSON[authorMeta](ctx, cs, "author", "bob")
	assert.NoError(err)
	assert.Equal(&authorMeta{Name: "bob", PostKarma: 42}, hit)

	assert.NoError(cs.Set(ctx, "author", "broken", "{not json"))
	_, err = GetJSON[authorMeta](ctx, cs, "author", "broken")
	assert.Error(err)
}

func TestMemCacheStoreExpiry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCacheStore(10, 10*time.Millisecond)
	assert.NoError(cs.Set(ctx, "author", "carol", "x"))
	time.Sleep(50 * time.Millisecond)
	v, err := cs.Get(ctx, "author", "carol")
	assert.NoError(err)
	assert.Empty(v)
}
