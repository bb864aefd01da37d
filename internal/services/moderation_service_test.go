package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisisconnect/moderation/internal/dto"
	"github.com/crisisconnect/moderation/internal/engine"
	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/policy"
	"github.com/crisisconnect/moderation/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*ModerationService, *store.MemStore, *ReputationLedger) {
	t.Helper()
	reg := policy.NewRegistry()
	require.NoError(t, reg.UpsertFilter(policy.WordFilter{
		ID:       "spam-phrases",
		Category: policy.CategorySpam,
		Words:    []string{"free money"},
		Action:   models.ActionEscalate,
		Severity: models.SeverityMedium,
		Enabled:  true,
	}))

	st := store.NewMemStore()
	logger := testLogger()
	ledger := NewReputationLedger(st, logger)
	eng := engine.New(logger, reg, engine.NewHeuristicScorer(), time.Second, nil)
	return NewModerationService(st, eng, ledger, logger), st, ledger
}

func addModerator(t *testing.T, st *store.MemStore, role models.ModeratorRole) *models.Moderator {
	t.Helper()
	mod := &models.Moderator{
		ID:       uuid.New(),
		Email:    string(role) + "@crisisconnect.test",
		Role:     role,
		DailyCap: 100,
	}
	require.NoError(t, st.CreateModerator(context.Background(), mod))
	return mod
}

func submitClean(t *testing.T, svc *ModerationService) (*models.ContentItem, uuid.UUID) {
	t.Helper()
	author := uuid.New()
	item, result, err := svc.Submit(context.Background(), &dto.SubmitContentRequest{
		Type:     models.ContentTypeMessage,
		Body:     "shelter open at the community center tonight",
		AuthorID: author,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, models.ContentStatusPending, item.Status)
	return item, author
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, &dto.SubmitContentRequest{Type: "podcast", Body: "x", AuthorID: uuid.New()})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Submit(ctx, &dto.SubmitContentRequest{Type: models.ContentTypeMessage, Body: "   ", AuthorID: uuid.New()})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Submit(ctx, &dto.SubmitContentRequest{Type: models.ContentTypeMessage, Body: "hello"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitSpamIsEscalated(t *testing.T) {
	svc, st, _ := newTestService(t)

	item, result, err := svc.Submit(context.Background(), &dto.SubmitContentRequest{
		Type:     models.ContentTypeComment,
		Body:     "free money for flood victims, DM me",
		AuthorID: uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ContentStatusEscalated, item.Status)
	assert.NotNil(t, item.ModeratedAt)
	assert.Equal(t, models.ActionEscalate, result.Action)

	stored, err := st.LatestResult(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, stored.ID)
}

func TestSubmitSetsPriorityFromTypeAndReputation(t *testing.T) {
	svc, _, ledger := newTestService(t)
	ctx := context.Background()

	author := uuid.New()
	// Push the author below the untrusted threshold.
	for i := 0; i < 4; i++ {
		_, err := ledger.Adjust(ctx, author, RepDeltaReject, "test setup")
		require.NoError(t, err)
	}

	item, _, err := svc.Submit(ctx, &dto.SubmitContentRequest{
		Type:     models.ContentTypeComment,
		Body:     "is the bridge still closed?",
		AuthorID: author,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Priority)
}

func TestManualReviewPermissionDenied(t *testing.T) {
	svc, st, _ := newTestService(t)
	item, _ := submitClean(t, svc)
	junior := addModerator(t, st, models.RoleJunior)

	_, err := svc.ManualReview(context.Background(), item.ID, junior.ID, &dto.ManualReviewRequest{
		Action: models.ActionReject,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// The item is untouched.
	current, err := st.GetContent(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPending, current.Status)
}

func TestManualReviewRejectAppliesPenalty(t *testing.T) {
	svc, st, ledger := newTestService(t)
	ctx := context.Background()
	item, author := submitClean(t, svc)
	senior := addModerator(t, st, models.RoleSenior)

	result, err := svc.ManualReview(ctx, item.ID, senior.ID, &dto.ManualReviewRequest{
		Action: models.ActionReject,
		Notes:  "off-topic solicitation",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ContentStatusRejected, result.Status)
	assert.True(t, result.Appealable)
	assert.Equal(t, 1.0, result.Confidence)
	require.NotNil(t, result.ManualReview)
	assert.Equal(t, senior.ID, result.ManualReview.ModeratorID)

	rep, err := ledger.Get(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, 40.0, rep.Score)
	assert.Equal(t, 1, rep.Violations)

	updated, err := st.GetModerator(ctx, senior.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalReviews)
	assert.Equal(t, 1, updated.ReviewsToday)
}

func TestManualReviewBanRequiresLead(t *testing.T) {
	svc, st, _ := newTestService(t)
	item, _ := submitClean(t, svc)

	senior := addModerator(t, st, models.RoleSenior)
	_, err := svc.ManualReview(context.Background(), item.ID, senior.ID, &dto.ManualReviewRequest{Action: models.ActionBan})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	lead := addModerator(t, st, models.RoleLead)
	result, err := svc.ManualReview(context.Background(), item.ID, lead.ID, &dto.ManualReviewRequest{Action: models.ActionBan})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusRejected, result.Status)
	assert.True(t, result.Appealable)
}

func TestAppealOnlyForRejections(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	item, author := submitClean(t, svc)
	senior := addModerator(t, st, models.RoleSenior)

	_, err := svc.ManualReview(ctx, item.ID, senior.ID, &dto.ManualReviewRequest{Action: models.ActionApprove})
	require.NoError(t, err)

	_, err = svc.SubmitAppeal(ctx, item.ID, author, "please reconsider")
	assert.ErrorIs(t, err, ErrNotAppealable)
}

func TestAppealLifecycleOverturned(t *testing.T) {
	svc, st, ledger := newTestService(t)
	ctx := context.Background()
	item, author := submitClean(t, svc)
	senior := addModerator(t, st, models.RoleSenior)
	lead := addModerator(t, st, models.RoleLead)

	_, err := svc.ManualReview(ctx, item.ID, senior.ID, &dto.ManualReviewRequest{Action: models.ActionReject})
	require.NoError(t, err)

	appeal, err := svc.SubmitAppeal(ctx, item.ID, author, "this was a legitimate update")
	require.NoError(t, err)
	assert.Equal(t, models.AppealPending, appeal.Status)
	assert.NotEmpty(t, appeal.ResultSnapshot)

	resolved, err := svc.ResolveAppeal(ctx, appeal.ID, lead.ID, &dto.ResolveAppealRequest{
		Status: models.AppealOverturned,
		Note:   "decision reversed on context",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppealOverturned, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, lead.ID, *resolved.ResolvedBy)

	current, err := st.GetContent(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusApproved, current.Status)

	// Rejection penalty refunded.
	rep, err := ledger.Get(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rep.Score)
}

func TestResolveAppealIdempotent(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	item, author := submitClean(t, svc)
	senior := addModerator(t, st, models.RoleSenior)
	lead := addModerator(t, st, models.RoleLead)

	_, err := svc.ManualReview(ctx, item.ID, senior.ID, &dto.ManualReviewRequest{Action: models.ActionReject})
	require.NoError(t, err)
	appeal, err := svc.SubmitAppeal(ctx, item.ID, author, "reconsider")
	require.NoError(t, err)

	_, err = svc.ResolveAppeal(ctx, appeal.ID, lead.ID, &dto.ResolveAppealRequest{Status: models.AppealUpheld})
	require.NoError(t, err)
	eventsBefore := len(st.ReputationEvents(author))

	// A second resolution is a no-op and keeps the first verdict.
	again, err := svc.ResolveAppeal(ctx, appeal.ID, lead.ID, &dto.ResolveAppealRequest{Status: models.AppealOverturned})
	require.NoError(t, err)
	assert.Equal(t, models.AppealUpheld, again.Status)
	assert.Len(t, st.ReputationEvents(author), eventsBefore)
}

func TestResolveAppealValidation(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	lead := addModerator(t, st, models.RoleLead)
	junior := addModerator(t, st, models.RoleJunior)

	_, err := svc.ResolveAppeal(ctx, uuid.New(), lead.ID, &dto.ResolveAppealRequest{Status: models.AppealPending})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ResolveAppeal(ctx, uuid.New(), junior.ID, &dto.ResolveAppealRequest{Status: models.AppealUpheld})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ResolveAppeal(ctx, uuid.New(), lead.ID, &dto.ResolveAppealRequest{Status: models.AppealUpheld})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPartialOverturnRequeues(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	item, author := submitClean(t, svc)
	senior := addModerator(t, st, models.RoleSenior)
	lead := addModerator(t, st, models.RoleLead)

	_, err := svc.ManualReview(ctx, item.ID, senior.ID, &dto.ManualReviewRequest{Action: models.ActionReject})
	require.NoError(t, err)
	appeal, err := svc.SubmitAppeal(ctx, item.ID, author, "partially wrong")
	require.NoError(t, err)

	_, err = svc.ResolveAppeal(ctx, appeal.ID, lead.ID, &dto.ResolveAppealRequest{Status: models.AppealPartiallyOverturned})
	require.NoError(t, err)

	current, err := st.GetContent(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusEscalated, current.Status)
}

func TestClaimNextHonorsCapAndSpecialization(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	item, _ := submitClean(t, svc)

	capped := addModerator(t, st, models.RoleSenior)
	capped.DailyCap = 5
	capped.ReviewsToday = 5
	require.NoError(t, st.UpdateModerator(ctx, capped))
	_, err := svc.ClaimNext(ctx, capped.ID)
	assert.ErrorIs(t, err, ErrDailyCapReached)

	specialist := addModerator(t, st, models.RoleSenior)
	specialist.Specializations = []models.ContentType{models.ContentTypeProfile}
	require.NoError(t, st.UpdateModerator(ctx, specialist))
	_, err = svc.ClaimNext(ctx, specialist.ID)
	assert.ErrorIs(t, err, ErrQueueEmpty)

	generalist := addModerator(t, st, models.RoleSenior)
	claimed, err := svc.ClaimNext(ctx, generalist.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, claimed.ID)
	require.NotNil(t, claimed.AssignedTo)
	assert.Equal(t, generalist.ID, *claimed.AssignedTo)

	// Another moderator cannot claim the same item.
	other := addModerator(t, st, models.RoleJunior)
	_, err = svc.ClaimNext(ctx, other.ID)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestQueueOrderedByPriority(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, &dto.SubmitContentRequest{
		Type: models.ContentTypeProfile, Body: "updated my profile", AuthorID: uuid.New(),
	})
	require.NoError(t, err)
	alert, _, err := svc.Submit(ctx, &dto.SubmitContentRequest{
		Type: models.ContentTypeAlert, Body: "levee breach on the east side", AuthorID: uuid.New(),
	})
	require.NoError(t, err)

	items, err := svc.Queue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, alert.ID, items[0].ID)
}
