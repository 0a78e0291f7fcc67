package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-knowledge-be/internal/constant"
	"chatbot-knowledge-be/internal/entity"
	"chatbot-knowledge-be/internal/repository/contract"
	"chatbot-knowledge-be/internal/repository/specification"
	"chatbot-knowledge-be/internal/repository/unitofwork"
	"chatbot-knowledge-be/pkg/embedding"
	"chatbot-knowledge-be/pkg/extract"
	"chatbot-knowledge-be/pkg/retry"
	"chatbot-knowledge-be/pkg/textsplitter"
	"chatbot-knowledge-be/pkg/usage"
)

// ---- in-memory persistence fakes ----

type memStore struct {
	mu           sync.Mutex
	docs         map[uuid.UUID]*entity.KnowledgeBase
	chunks       map[uuid.UUID][]*entity.KBChunk
	chunkDeletes int
}

func newMemStore() *memStore {
	return &memStore{
		docs:   map[uuid.UUID]*entity.KnowledgeBase{},
		chunks: map[uuid.UUID][]*entity.KBChunk{},
	}
}

func (s *memStore) addDoc(doc *entity.KnowledgeBase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Id] = doc
}

func (s *memStore) doc(id uuid.UUID) *entity.KnowledgeBase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id]
}

func (s *memStore) docChunks(id uuid.UUID) []*entity.KBChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chunks[id]
}

type memUow struct{ store *memStore }

func (u *memUow) Begin(context.Context) error { return nil }
func (u *memUow) Commit() error               { return nil }
func (u *memUow) Rollback() error             { return nil }

func (u *memUow) KnowledgeBaseRepository() contract.KnowledgeBaseRepository {
	return &memKBRepo{store: u.store}
}

func (u *memUow) KBChunkRepository() contract.KBChunkRepository {
	return &memChunkRepo{store: u.store}
}

func (u *memUow) UsageRecordRepository() contract.UsageRecordRepository {
	return &memUsageRepo{}
}

type memFactory struct{ store *memStore }

func (f *memFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &memUow{store: f.store}
}

type memKBRepo struct{ store *memStore }

func (r *memKBRepo) Create(_ context.Context, kb *entity.KnowledgeBase) error {
	r.store.addDoc(kb)
	return nil
}

func (r *memKBRepo) Update(_ context.Context, kb *entity.KnowledgeBase) error {
	r.store.addDoc(kb)
	return nil
}

func (r *memKBRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.docs, id)
	return nil
}

func (r *memKBRepo) FindById(_ context.Context, id uuid.UUID) (*entity.KnowledgeBase, error) {
	return r.store.doc(id), nil
}

func (r *memKBRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeBase, error) {
	docs, err := r.FindAll(ctx, specs...)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func (r *memKBRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.KnowledgeBase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	pendingOnly := false
	limit := 0
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.Unprocessed:
			pendingOnly = true
		case specification.Pagination:
			limit = sp.Limit
		}
	}

	var out []*entity.KnowledgeBase
	for _, d := range r.store.docs {
		if pendingOnly && (d.Processed || d.Status != constant.KnowledgeStatusPending) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memKBRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	docs, err := r.FindAll(ctx, specs...)
	return int64(len(docs)), err
}

func (r *memKBRepo) MarkStatus(_ context.Context, id uuid.UUID, status string, processed bool, errorMessage *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	doc, ok := r.store.docs[id]
	if !ok {
		return fmt.Errorf("doc %s not found", id)
	}
	doc.Status = status
	doc.Processed = processed
	doc.ErrorMessage = errorMessage
	return nil
}

type memChunkRepo struct{ store *memStore }

func (r *memChunkRepo) Create(_ context.Context, chunk *entity.KBChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.chunks[chunk.KnowledgeBaseId] = append(r.store.chunks[chunk.KnowledgeBaseId], chunk)
	return nil
}

func (r *memChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error {
	for _, c := range chunks {
		if err := r.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *memChunkRepo) DeleteByKnowledgeBaseId(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.chunks, id)
	r.store.chunkDeletes++
	return nil
}

func (r *memChunkRepo) DeleteByChatbotId(context.Context, uuid.UUID) error { return nil }

func (r *memChunkRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.KBChunk, error) {
	return nil, nil
}

func (r *memChunkRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *memChunkRepo) SearchSimilar(context.Context, []float32, int, uuid.UUID) ([]*entity.KBChunk, error) {
	return nil, nil
}

func (r *memChunkRepo) SearchSimilarWithScore(context.Context, []float32, int, uuid.UUID, float64) ([]*contract.ScoredKBChunk, error) {
	return nil, nil
}

type memUsageRepo struct{}

func (memUsageRepo) Create(context.Context, *entity.UsageRecord) error { return nil }
func (memUsageRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.UsageRecord, error) {
	return nil, nil
}
func (memUsageRepo) SumTokens(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

// ---- collaborator fakes ----

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemCounter() *memCounter { return &memCounter{counts: map[string]int64{}} }

func (c *memCounter) IncrBy(_ context.Context, key string, n int64, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key] += n
	return c.counts[key], nil
}

func (c *memCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key], nil
}

func (c *memCounter) total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum int64
	for _, v := range c.counts {
		sum += v
	}
	return sum
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type memStorage struct{ objects map[string][]byte }

func (s *memStorage) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

// flakyProvider fails the first failN calls, then delegates to a mock.
type flakyProvider struct {
	mock  *embedding.MockProvider
	failN int
	err   error
	calls int
}

func (p *flakyProvider) Embed(ctx context.Context, texts []string) (*embedding.BatchResult, error) {
	p.calls++
	if p.calls <= p.failN {
		return nil, p.err
	}
	return p.mock.Embed(ctx, texts)
}

// ---- fixture ----

type fixture struct {
	store   *memStore
	counter *memCounter
	svc     IIngestionService
}

func newFixture(t *testing.T, provider embedding.Provider, tokenLimit int64, objects map[string][]byte) *fixture {
	t.Helper()

	store := newMemStore()
	counter := newMemCounter()
	factory := &memFactory{store: store}

	batchClient := embedding.NewBatchClient(provider, embedding.BatchClientConfig{
		BatchSize:  20,
		BatchDelay: time.Millisecond,
		Dimensions: 8,
		Retry:      retry.Config{Attempts: 3, InitialDelay: time.Millisecond},
	})

	ledger := usage.NewLedger(counter, nil, map[string]int64{
		usage.MetricEmbeddingTokens: tokenLimit,
	}, nopLogger{})

	svc := NewIngestionService(
		factory,
		&memStorage{objects: objects},
		extract.NewExtractor(),
		batchClient,
		ledger,
		nil,
		nopLogger{},
		IngestionOptions{
			DocumentBatchSize: 5,
			SplitterOptions:   textsplitter.Options{MaxLength: 80, Overlap: 20, PreserveParagraphs: true, PreserveSentences: true},
		},
	)

	return &fixture{store: store, counter: counter, svc: svc}
}

func pendingDoc(content string) *entity.KnowledgeBase {
	return &entity.KnowledgeBase{
		Id:          uuid.New(),
		ChatbotId:   uuid.New(),
		UserId:      uuid.New(),
		Content:     content,
		ContentType: "text",
		Status:      constant.KnowledgeStatusPending,
		CreatedAt:   time.Now(),
	}
}

// ---- tests ----

func TestProcessDocumentHappyPath(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, nil)

	doc := pendingDoc("First sentence here. Second sentence here.\n\nAnother paragraph with more words in it.")
	f.store.addDoc(doc)

	require.NoError(t, f.svc.ProcessDocument(context.Background(), doc.Id))

	got := f.store.doc(doc.Id)
	assert.Equal(t, constant.KnowledgeStatusProcessed, got.Status)
	assert.True(t, got.Processed)
	assert.Nil(t, got.ErrorMessage)

	chunks := f.store.docChunks(doc.Id)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, doc.ChatbotId, c.ChatbotId)
		assert.Len(t, c.Embedding, 8)
	}

	assert.Greater(t, f.counter.total(), int64(0), "usage must be recorded")
}

func TestProcessDocumentQuotaDeniedStoresChunksWithoutEmbeddings(t *testing.T) {
	mock := embedding.NewMockProvider(8)
	f := newFixture(t, mock, 1, nil) // 1-token monthly limit

	doc := pendingDoc("Plenty of text so the estimate easily exceeds a single token of quota.")
	f.store.addDoc(doc)

	require.NoError(t, f.svc.ProcessDocument(context.Background(), doc.Id))

	got := f.store.doc(doc.Id)
	assert.Equal(t, constant.KnowledgeStatusProcessed, got.Status)
	assert.True(t, got.Processed)

	chunks := f.store.docChunks(doc.Id)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Nil(t, c.Embedding, "quota-denied chunks must not carry vectors")
	}
	assert.Zero(t, f.counter.total())
}

func TestProcessDocumentRetriesTransientFailure(t *testing.T) {
	provider := &flakyProvider{
		mock:  embedding.NewMockProvider(8),
		failN: 2,
		err:   &embedding.RateLimitError{Message: "busy"},
	}
	f := newFixture(t, provider, 1_000_000, nil)

	doc := pendingDoc("Short content that fits one chunk.")
	f.store.addDoc(doc)

	require.NoError(t, f.svc.ProcessDocument(context.Background(), doc.Id))
	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, constant.KnowledgeStatusProcessed, f.store.doc(doc.Id).Status)
}

func TestProcessDocumentExhaustedRetriesMarksError(t *testing.T) {
	provider := &flakyProvider{
		mock:  embedding.NewMockProvider(8),
		failN: 100,
		err:   &embedding.ProviderError{StatusCode: 500, Message: "down"},
	}
	f := newFixture(t, provider, 1_000_000, nil)

	doc := pendingDoc("Some content to ingest.")
	f.store.addDoc(doc)

	err := f.svc.ProcessDocument(context.Background(), doc.Id)
	require.Error(t, err)

	got := f.store.doc(doc.Id)
	assert.Equal(t, constant.KnowledgeStatusError, got.Status)
	assert.False(t, got.Processed)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "down")
	assert.Empty(t, f.store.docChunks(doc.Id))
}

func TestProcessDocumentFromFile(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, map[string][]byte{
		"uploads/guide.txt": []byte("Downloaded file content for ingestion."),
	})

	doc := pendingDoc("")
	path := "uploads/guide.txt"
	doc.FilePath = &path
	f.store.addDoc(doc)

	require.NoError(t, f.svc.ProcessDocument(context.Background(), doc.Id))

	chunks := f.store.docChunks(doc.Id)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Downloaded file content for ingestion.", chunks[0].Content)
}

func TestProcessDocumentMissingFileMarksError(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, map[string][]byte{})

	doc := pendingDoc("")
	path := "uploads/gone.pdf"
	doc.FilePath = &path
	f.store.addDoc(doc)

	err := f.svc.ProcessDocument(context.Background(), doc.Id)
	require.Error(t, err)
	assert.Equal(t, constant.KnowledgeStatusError, f.store.doc(doc.Id).Status)
}

func TestProcessDocumentReingestReplacesChunks(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, nil)

	doc := pendingDoc("Reprocessed content stays single-generation.")
	f.store.addDoc(doc)

	require.NoError(t, f.svc.ProcessDocument(context.Background(), doc.Id))
	first := len(f.store.docChunks(doc.Id))

	require.NoError(t, f.svc.ProcessDocument(context.Background(), doc.Id))
	second := len(f.store.docChunks(doc.Id))

	assert.Equal(t, first, second, "re-ingestion must not accumulate chunks")
	assert.Equal(t, 2, f.store.chunkDeletes)
}

func TestProcessPendingIsolatesFailures(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, map[string][]byte{})

	bad := pendingDoc("")
	path := "uploads/missing.docx"
	bad.FilePath = &path
	bad.CreatedAt = time.Now().Add(-time.Hour)
	f.store.addDoc(bad)

	good := pendingDoc("Good document processes fine.")
	f.store.addDoc(good)

	res, err := f.svc.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, constant.KnowledgeStatusError, f.store.doc(bad.Id).Status)
	assert.Equal(t, constant.KnowledgeStatusProcessed, f.store.doc(good.Id).Status)
}

func TestProcessPendingAbortsOnBadCredentials(t *testing.T) {
	provider := &flakyProvider{
		mock:  embedding.NewMockProvider(8),
		failN: 100,
		err:   fmt.Errorf("%w (status 401)", embedding.ErrUnauthorized),
	}
	f := newFixture(t, provider, 1_000_000, nil)

	first := pendingDoc("First document.")
	first.CreatedAt = time.Now().Add(-time.Hour)
	f.store.addDoc(first)

	second := pendingDoc("Second document.")
	f.store.addDoc(second)

	res, err := f.svc.ProcessPending(context.Background())
	require.ErrorIs(t, err, embedding.ErrUnauthorized)

	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 1, res.Failed)
	// The second document was never attempted.
	assert.Equal(t, constant.KnowledgeStatusPending, f.store.doc(second.Id).Status)
}

func TestProcessPendingEmptyQueue(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, nil)

	res, err := f.svc.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Zero(t, res.Failed)
}

func TestProcessDocumentUnknownId(t *testing.T) {
	f := newFixture(t, embedding.NewMockProvider(8), 1_000_000, nil)

	err := f.svc.ProcessDocument(context.Background(), uuid.New())
	assert.Error(t, err)
}
