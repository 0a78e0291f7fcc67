// Package usage meters embedding-token consumption against per-user
// monthly quotas.
package usage

import (
	"context"
	"fmt"
	"time"

	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// MetricEmbeddingTokens is the metric gating embedding generation.
const MetricEmbeddingTokens = "embedding_tokens_per_month"

// Counter is the shared monthly counter. Implementations must use
// additive server-side increments (never read-modify-write) so concurrent
// pipeline runs for the same user cannot lose updates.
type Counter interface {
	IncrBy(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// Recorder appends per-batch audit rows behind the counter.
type Recorder interface {
	Create(ctx context.Context, record *entity.UsageRecord) error
}

// Ledger checks and records token usage. Limits are per metric; a
// negative limit means unlimited. The ledger fails open: if the counter
// backend is unreachable, ingestion proceeds (with a warning) rather than
// blocking on billing infrastructure.
type Ledger struct {
	counter Counter
	records Recorder
	limits  map[string]int64
	logger  logger.ILogger
}

// NewLedger builds a ledger. records may be nil to skip audit rows.
func NewLedger(counter Counter, records Recorder, limits map[string]int64, log logger.ILogger) *Ledger {
	return &Ledger{counter: counter, records: records, limits: limits, logger: log}
}

// CheckLimit reports whether userID may consume estimatedTokens more of
// metric within the current monthly window.
func (l *Ledger) CheckLimit(ctx context.Context, userID uuid.UUID, metric string, estimatedTokens int) bool {
	limit, ok := l.limits[metric]
	if !ok || limit < 0 {
		return true
	}

	used, err := l.counter.Get(ctx, periodKey(metric, userID, time.Now()))
	if err != nil {
		l.logger.Warn("usage", "usage counter unavailable, allowing", map[string]interface{}{
			"user_id": userID, "metric": metric, "error": err.Error(),
		})
		return true
	}
	return used+int64(estimatedTokens) <= limit
}

// RecordUsage adds tokens to the user's monthly counter and appends an
// audit row. Called once per successfully embedded sub-batch with the
// provider-reported count, so partial failures under-report usage.
func (l *Ledger) RecordUsage(ctx context.Context, userID uuid.UUID, metric string, tokens int, metadata map[string]interface{}) error {
	if tokens <= 0 {
		return nil
	}

	now := time.Now()
	if _, err := l.counter.IncrBy(ctx, periodKey(metric, userID, now), int64(tokens), ttlPastMonthEnd(now)); err != nil {
		return fmt.Errorf("increment usage counter: %w", err)
	}

	if l.records != nil {
		record := &entity.UsageRecord{
			Id:        uuid.New(),
			UserId:    userID,
			Metric:    metric,
			Tokens:    tokens,
			Period:    now.Format("2006-01"),
			Metadata:  metadata,
			CreatedAt: now,
		}
		if err := l.records.Create(ctx, record); err != nil {
			return fmt.Errorf("append usage record: %w", err)
		}
	}
	return nil
}

// EstimateTokens sums the cheap 1-token-per-4-characters heuristic over
// all chunks. It deliberately stays coarse: the gate decision is made once
// per document against this estimate, while RecordUsage later writes the
// provider's real counts, so documents near the quota boundary may over-
// or under-shoot slightly. Known soft-limit behavior, not a bug.
func EstimateTokens(texts []string) int {
	total := 0
	for _, t := range texts {
		n := len([]rune(t))
		total += (n + 3) / 4
	}
	return total
}

func periodKey(metric string, userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("usage:%s:%s:%s", metric, userID, now.Format("2006-01"))
}

// ttlPastMonthEnd keeps the counter alive until shortly after the billing
// window closes, then lets Redis reclaim it.
func ttlPastMonthEnd(now time.Time) time.Duration {
	monthEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return monthEnd.Sub(now) + 72*time.Hour
}
