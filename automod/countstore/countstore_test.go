package countstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, CounterDecision, "cats/remove", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.Increment(ctx, CounterDecision, "cats/remove"))
	assert.NoError(cs.Increment(ctx, CounterDecision, "cats/remove"))

	c, err = cs.GetCount(ctx, CounterDecision, "dogs/remove", PeriodDay)
	assert.NoError(err)
	assert.Equal(0, c)

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCount(ctx, CounterDecision, "cats/remove", period)
		assert.NoError(err)
		assert.Equal(2, c)
	}

	// distinct authors actioned per community
	c, err = cs.GetCountDistinct(ctx, CounterAuthor, "cats", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.IncrementDistinct(ctx, CounterAuthor, "cats", "alice"))
	assert.NoError(cs.IncrementDistinct(ctx, CounterAuthor, "cats", "alice"))
	assert.NoError(cs.IncrementDistinct(ctx, CounterAuthor, "cats", "alice"))
	c, err = cs.GetCountDistinct(ctx, CounterAuthor, "cats", PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)

	assert.NoError(cs.IncrementDistinct(ctx, CounterAuthor, "cats", "bob"))
	assert.NoError(cs.IncrementDistinct(ctx, CounterAuthor, "cats", "carol"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCountDistinct(ctx, CounterAuthor, "cats", period)
		assert.NoError(err)
		assert.Equal(3, c)
	}
}

func TestMemCountStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, "test1", "val1", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)

	// four writers and two readers across two counters; run with -race
	var wg sync.WaitGroup
	fnInc := func(name, val string, times int) {
		for i := 0; i < times; i++ {
			assert.NoError(cs.Increment(ctx, name, val))
			assert.NoError(cs.IncrementDistinct(ctx, name, name, val))
			time.Sleep(time.Nanosecond)
		}
		wg.Done()
	}
	fnRead := func(name, val string, times int) {
		for i := 0; i < times; i++ {
			_, err := cs.GetCount(ctx, name, val, PeriodTotal)
			assert.NoError(err)
			time.Sleep(time.Nanosecond)
		}
	}
	wg.Add(4)
	go fnInc("test1", "val1", 10)
	go fnInc("test1", "val1", 10)
	go fnRead("test1", "val1", 10)
	go fnInc("test2", "val2", 6)
	go fnInc("test2", "val2", 6)
	go fnRead("test2", "val2", 6)
	wg.Wait()

	c, err = cs.GetCount(ctx, "test1", "val1", PeriodTotal)
	assert.NoError(err)
	assert.Equal(20, c)
	c, err = cs.GetCount(ctx, "test2", "val2", PeriodTotal)
	assert.NoError(err)
	assert.Equal(12, c)

	// each writer adds the same distinct value
	c, err = cs.GetCountDistinct(ctx, "test1", "test1", PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)
	c, err = cs.GetCountDistinct(ctx, "test2", "test2", PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)
}

func TestRedisCountStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	cs, err := NewRedisCountStore("redis://localhost:6379/0")
	if err != nil {
		t.Fail()
	}
	before, err := cs.GetCount(ctx, CounterRuleMatch, "cats/1", PeriodHour)
	assert.NoError(err)
	assert.NoError(cs.Increment(ctx, CounterRuleMatch, "cats/1"))
	after, err := cs.GetCount(ctx, CounterRuleMatch, "cats/1", PeriodHour)
	assert.NoError(err)
	assert.Equal(before+1, after)
}
