package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/store"
)

func newTestLedger(t *testing.T) (*ReputationLedger, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	return NewReputationLedger(st, testLogger()), st
}

func TestAdjustCreatesRecordLazily(t *testing.T) {
	ledger, st := newTestLedger(t)
	ctx := context.Background()
	user := uuid.New()

	rep, err := ledger.Adjust(ctx, user, RepDeltaApprove, "content approved")
	require.NoError(t, err)

	assert.Equal(t, 51.0, rep.Score)
	assert.Equal(t, models.LevelRegular, rep.Level)
	assert.Equal(t, 1, rep.ContentQuality)
	assert.Zero(t, rep.Violations)

	events := st.ReputationEvents(user)
	require.Len(t, events, 1)
	assert.Equal(t, RepDeltaApprove, events[0].Delta)
	assert.Equal(t, 51.0, events[0].Score)
}

func TestAdjustClampsScore(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	low := uuid.New()
	var rep *models.UserReputation
	var err error
	for i := 0; i < 10; i++ {
		rep, err = ledger.Adjust(ctx, low, RepDeltaReject, "rejected")
		require.NoError(t, err)
	}
	assert.Equal(t, 0.0, rep.Score)
	assert.Equal(t, models.LevelUntrusted, rep.Level)
	assert.Equal(t, 10, rep.Violations)

	high := uuid.New()
	for i := 0; i < 60; i++ {
		rep, err = ledger.Adjust(ctx, high, RepDeltaApprove, "approved")
		require.NoError(t, err)
	}
	assert.Equal(t, 100.0, rep.Score)
	assert.Equal(t, models.LevelVerified, rep.Level)
}

func TestLevelThresholds(t *testing.T) {
	assert.Equal(t, models.LevelUntrusted, models.LevelForScore(19.9))
	assert.Equal(t, models.LevelNew, models.LevelForScore(20))
	assert.Equal(t, models.LevelRegular, models.LevelForScore(40))
	assert.Equal(t, models.LevelTrusted, models.LevelForScore(60))
	assert.Equal(t, models.LevelVerified, models.LevelForScore(80))
	assert.Equal(t, models.LevelVerified, models.LevelForScore(100))
}

func TestLevelWithoutHistory(t *testing.T) {
	ledger, st := newTestLedger(t)
	ctx := context.Background()
	user := uuid.New()

	assert.Equal(t, models.LevelRegular, ledger.Level(ctx, user))

	// Reading a level must not create a record.
	_, err := st.GetReputation(ctx, user)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetSynthesizesStartRecord(t *testing.T) {
	ledger, _ := newTestLedger(t)

	rep, err := ledger.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.ReputationStartScore, rep.Score)
	assert.Equal(t, models.LevelRegular, rep.Level)
}

func TestAdjustConcurrentSameUser(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	user := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Adjust(ctx, user, RepDeltaApprove, "approved")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rep, err := ledger.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 70.0, rep.Score)
	assert.Equal(t, models.LevelTrusted, rep.Level)
}
