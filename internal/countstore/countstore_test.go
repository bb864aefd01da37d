package countstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemCountStoreBasics(t *testing.T) {
	ctx := context.Background()
	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, "content-body", "abc", PeriodTotal)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	for i := 0; i < 3; i++ {
		require.NoError(t, cs.Increment(ctx, "content-body", "abc"))
	}
	require.NoError(t, cs.Increment(ctx, "content-body", "other"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCount(ctx, "content-body", "abc", period)
		require.NoError(t, err)
		assert.Equal(t, 3, c, period)
	}

	c, err = cs.GetCount(ctx, "content-body", "other", PeriodHour)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestMemCountStoreDistinct(t *testing.T) {
	ctx := context.Background()
	cs := NewMemCountStore()

	require.NoError(t, cs.IncrementDistinct(ctx, "author-targets", "author-1", "item-a"))
	require.NoError(t, cs.IncrementDistinct(ctx, "author-targets", "author-1", "item-a"))
	require.NoError(t, cs.IncrementDistinct(ctx, "author-targets", "author-1", "item-b"))

	c, err := cs.GetCountDistinct(ctx, "author-targets", "author-1", PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 2, c)

	c, err = cs.GetCountDistinct(ctx, "author-targets", "author-2", PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}
