package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crisisconnect/moderation/internal/countstore"
	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/policy"
)

const (
	// Strictly greater than: a violation set made entirely of lexical
	// matches (confidence exactly 0.9) escalates instead of auto-rejecting.
	autoRejectConfidence = 0.9

	verifiedApproveConfidence = 0.95

	// Identical bodies seen more than this many times in an hour raise a
	// duplicate violation.
	duplicateThreshold = 3

	// Authors submitting more than this many items in an hour raise a
	// low-severity spam violation.
	hourlySubmissionLimit = 30
)

// Outcome is the pipeline verdict for one evaluation. When Decided is false
// the item stays pending for the manual queue.
type Outcome struct {
	Decided      bool
	Status       models.ContentStatus
	Action       models.ModerationAction
	Violations   []models.ViolationDetail
	Confidence   float64
	Reason       string
	Appealable   bool
	MatchedRules []string
	AIResult     *AIAnalysisResult
	ProcessingMs int64
}

// Engine runs the decision pipeline: lexical filters, heuristic scoring,
// policy rules, then the severity/confidence fallback and reputation-aware
// auto-approval. It performs no storage side effects; callers persist the
// outcome and apply reputation deltas.
type Engine struct {
	Logger        *slog.Logger
	Policies      *policy.Registry
	Scorer        ScoreProvider
	ScorerTimeout time.Duration
	Counters      countstore.CountStore
}

func New(logger *slog.Logger, policies *policy.Registry, scorer ScoreProvider, scorerTimeout time.Duration, counters countstore.CountStore) *Engine {
	return &Engine{
		Logger:        logger,
		Policies:      policies,
		Scorer:        scorer,
		ScorerTimeout: scorerTimeout,
		Counters:      counters,
	}
}

// Evaluate runs all pipeline stages in order and returns the verdict.
func (e *Engine) Evaluate(ctx context.Context, item *models.ContentItem, authorLevel models.ReputationLevel) *Outcome {
	start := time.Now()
	defer func() {
		pipelineDuration.Observe(time.Since(start).Seconds())
	}()

	violations := ScanFilters(e.Policies.Filters(), item.Body)

	ai := e.score(ctx, item.Body)
	violations = append(violations, ThresholdViolations(ai)...)

	if v := e.checkDuplicate(ctx, item); v != nil {
		violations = append(violations, *v)
	}
	if v := e.checkVelocity(ctx, item); v != nil {
		violations = append(violations, *v)
	}

	ruleOutcome := EvaluateRules(e.Policies.Rules(), item, authorLevel, ai)

	out := &Outcome{
		Violations:   violations,
		Confidence:   models.AvgConfidence(violations),
		MatchedRules: ruleOutcome.Matched,
		AIResult:     ai,
	}

	switch {
	case ruleOutcome.Auto != nil:
		rule := ruleOutcome.Auto
		out.Decided = true
		out.Action = rule.Action
		out.Status = rule.Action.StatusFor(true)
		out.Reason = fmt.Sprintf("Matched rule: %s", rule.Name)
		out.Appealable = rule.Action.Appealable()
		ruleHitCount.WithLabelValues(rule.Name).Inc()

	case len(violations) > 0:
		maxSeverity := models.MaxSeverityRank(violations)
		switch {
		case maxSeverity >= models.SeverityHigh.Rank() && out.Confidence > autoRejectConfidence:
			out.Decided = true
			out.Action = models.ActionReject
			out.Status = models.ContentStatusAutoRejected
			out.Reason = "Auto-rejected due to high-severity violations"
			out.Appealable = true
		case maxSeverity >= models.SeverityMedium.Rank():
			out.Decided = true
			out.Action = models.ActionEscalate
			out.Status = models.ContentStatusEscalated
			out.Reason = "Escalated for manual review"
		default:
			out.Status = models.ContentStatusPending
		}

	case authorLevel == models.LevelVerified:
		out.Decided = true
		out.Action = models.ActionApprove
		out.Status = models.ContentStatusAutoApproved
		out.Confidence = verifiedApproveConfidence
		out.Reason = "Auto-approved - verified user"

	default:
		out.Status = models.ContentStatusPending
	}

	out.ProcessingMs = time.Since(start).Milliseconds()
	decisionCount.WithLabelValues(string(out.Status)).Inc()
	return out
}

// score calls the provider with a bounded timeout. A provider failure is not
// a pipeline failure: missing scores degrade to all-zero and the pipeline
// relies on lexical filters and rules alone.
func (e *Engine) score(ctx context.Context, text string) *AIAnalysisResult {
	if e.Scorer == nil {
		return &AIAnalysisResult{Sentiment: "neutral"}
	}
	if e.ScorerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ScorerTimeout)
		defer cancel()
	}
	result, err := e.Scorer.Score(ctx, text)
	if err != nil {
		scorerDegradedCount.Inc()
		e.Logger.Warn("scoring provider degraded, falling back to lexical signals", "error", err)
		return &AIAnalysisResult{Sentiment: "neutral"}
	}
	return result
}

// checkDuplicate counts sightings of the normalized body and raises a
// duplicate violation once the hourly threshold is crossed. Counter store
// failures degrade to no signal.
func (e *Engine) checkDuplicate(ctx context.Context, item *models.ContentItem) *models.ViolationDetail {
	if e.Counters == nil {
		return nil
	}
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(item.Body))))
	hash := hex.EncodeToString(sum[:16])

	if err := e.Counters.Increment(ctx, "content-body", hash); err != nil {
		e.Logger.Warn("duplicate counter increment failed", "error", err)
		return nil
	}
	if err := e.Counters.IncrementDistinct(ctx, "content-body-authors", hash, item.AuthorID.String()); err != nil {
		e.Logger.Warn("duplicate author counter increment failed", "error", err)
	}

	count, err := e.Counters.GetCount(ctx, "content-body", hash, countstore.PeriodHour)
	if err != nil {
		e.Logger.Warn("duplicate counter read failed", "error", err)
		return nil
	}
	if count <= duplicateThreshold {
		return nil
	}
	duplicateHitCount.Inc()

	// Distinct-author counts distinguish one author reposting from a
	// coordinated spread of the same body across accounts.
	authors, err := e.Counters.GetCountDistinct(ctx, "content-body-authors", hash, countstore.PeriodHour)
	if err != nil {
		e.Logger.Warn("duplicate author counter read failed", "error", err)
		authors = 0
	}
	return &models.ViolationDetail{
		Type:       models.ViolationDuplicate,
		Severity:   models.SeverityLow,
		Confidence: 0.8,
		Evidence:   fmt.Sprintf("body seen %d times from %d authors in the last hour", count, authors),
	}
}

// checkVelocity tracks per-author submission rates and raises a spam
// violation once the hourly limit is exceeded. Counter store failures
// degrade to no signal.
func (e *Engine) checkVelocity(ctx context.Context, item *models.ContentItem) *models.ViolationDetail {
	if e.Counters == nil {
		return nil
	}
	author := item.AuthorID.String()
	if err := e.Counters.Increment(ctx, "author-submissions", author); err != nil {
		e.Logger.Warn("submission counter increment failed", "error", err)
		return nil
	}
	count, err := e.Counters.GetCount(ctx, "author-submissions", author, countstore.PeriodHour)
	if err != nil {
		e.Logger.Warn("submission counter read failed", "error", err)
		return nil
	}
	if count <= hourlySubmissionLimit {
		return nil
	}
	velocityHitCount.Inc()
	return &models.ViolationDetail{
		Type:       models.ViolationSpam,
		Severity:   models.SeverityLow,
		Confidence: 0.7,
		Evidence:   fmt.Sprintf("%d submissions from author in the last hour", count),
	}
}
