package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-knowledge-be/internal/entity"
)

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	fail   error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCounter) IncrBy(_ context.Context, key string, n int64, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return 0, c.fail
	}
	c.counts[key] += n
	c.ttls[key] = ttl
	return c.counts[key], nil
}

func (c *fakeCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return 0, c.fail
	}
	return c.counts[key], nil
}

type fakeRecorder struct {
	records []*entity.UsageRecord
	fail    error
}

func (r *fakeRecorder) Create(_ context.Context, record *entity.UsageRecord) error {
	if r.fail != nil {
		return r.fail
	}
	r.records = append(r.records, record)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(nil))
	assert.Equal(t, 1, EstimateTokens([]string{"abc"}))
	assert.Equal(t, 1, EstimateTokens([]string{"abcd"}))
	assert.Equal(t, 2, EstimateTokens([]string{"abcde"}))
	// Per-chunk ceilings are summed, not merged.
	assert.Equal(t, 2, EstimateTokens([]string{"ab", "cd"}))
	// Rune count, not byte count.
	assert.Equal(t, 1, EstimateTokens([]string{"日本語"}))
}

func TestCheckLimitAllowsWithinQuota(t *testing.T) {
	counter := newFakeCounter()
	ledger := NewLedger(counter, nil, map[string]int64{MetricEmbeddingTokens: 100}, nopLogger{})
	userID := uuid.New()

	assert.True(t, ledger.CheckLimit(context.Background(), userID, MetricEmbeddingTokens, 100))
	assert.False(t, ledger.CheckLimit(context.Background(), userID, MetricEmbeddingTokens, 101))
}

func TestCheckLimitCountsExistingUsage(t *testing.T) {
	counter := newFakeCounter()
	ledger := NewLedger(counter, nil, map[string]int64{MetricEmbeddingTokens: 100}, nopLogger{})
	userID := uuid.New()

	require.NoError(t, ledger.RecordUsage(context.Background(), userID, MetricEmbeddingTokens, 60, nil))

	assert.True(t, ledger.CheckLimit(context.Background(), userID, MetricEmbeddingTokens, 40))
	assert.False(t, ledger.CheckLimit(context.Background(), userID, MetricEmbeddingTokens, 41))
}

func TestCheckLimitUnknownMetricUnlimited(t *testing.T) {
	ledger := NewLedger(newFakeCounter(), nil, map[string]int64{}, nopLogger{})

	assert.True(t, ledger.CheckLimit(context.Background(), uuid.New(), "other_metric", 1<<40))
}

func TestCheckLimitNegativeLimitUnlimited(t *testing.T) {
	ledger := NewLedger(newFakeCounter(), nil, map[string]int64{MetricEmbeddingTokens: -1}, nopLogger{})

	assert.True(t, ledger.CheckLimit(context.Background(), uuid.New(), MetricEmbeddingTokens, 1<<40))
}

func TestCheckLimitFailsOpenOnCounterError(t *testing.T) {
	counter := newFakeCounter()
	counter.fail = errors.New("redis down")
	ledger := NewLedger(counter, nil, map[string]int64{MetricEmbeddingTokens: 10}, nopLogger{})

	assert.True(t, ledger.CheckLimit(context.Background(), uuid.New(), MetricEmbeddingTokens, 1000))
}

func TestRecordUsageWritesCounterAndAuditRow(t *testing.T) {
	counter := newFakeCounter()
	recorder := &fakeRecorder{}
	ledger := NewLedger(counter, recorder, map[string]int64{MetricEmbeddingTokens: 1000}, nopLogger{})
	userID := uuid.New()

	err := ledger.RecordUsage(context.Background(), userID, MetricEmbeddingTokens, 42, map[string]interface{}{"doc": "x"})
	require.NoError(t, err)

	key := periodKey(MetricEmbeddingTokens, userID, time.Now())
	assert.Equal(t, int64(42), counter.counts[key])
	assert.Greater(t, counter.ttls[key], time.Duration(0))

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, userID, rec.UserId)
	assert.Equal(t, MetricEmbeddingTokens, rec.Metric)
	assert.Equal(t, 42, rec.Tokens)
	assert.Equal(t, time.Now().Format("2006-01"), rec.Period)
}

func TestRecordUsageZeroTokensNoop(t *testing.T) {
	counter := newFakeCounter()
	recorder := &fakeRecorder{}
	ledger := NewLedger(counter, recorder, nil, nopLogger{})

	require.NoError(t, ledger.RecordUsage(context.Background(), uuid.New(), MetricEmbeddingTokens, 0, nil))
	assert.Empty(t, counter.counts)
	assert.Empty(t, recorder.records)
}

func TestRecordUsageCounterFailureSurfaces(t *testing.T) {
	counter := newFakeCounter()
	counter.fail = errors.New("redis down")
	ledger := NewLedger(counter, &fakeRecorder{}, nil, nopLogger{})

	err := ledger.RecordUsage(context.Background(), uuid.New(), MetricEmbeddingTokens, 5, nil)
	assert.Error(t, err)
}

func TestTTLPastMonthEnd(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	ttl := ttlPastMonthEnd(now)

	expiry := now.Add(ttl)
	monthEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, expiry.After(monthEnd))
	assert.True(t, expiry.Before(monthEnd.Add(96*time.Hour)))
}
