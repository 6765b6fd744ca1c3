package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagechat/internal/config"
	"pagechat/internal/domain"
	"pagechat/internal/session"
)

// fakeExtractor returns canned page text.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) FetchAndExtract(ctx context.Context, url string) (string, error) {
	return f.text, f.err
}

// fakeEmbedder maps text to a bag-of-keywords vector so retrieval behaves
// predictably: dimension i is 1 when the text contains keyword i.
type fakeEmbedder struct {
	keywords []string
	err      error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vector := make([]float32, len(f.keywords))
	lower := strings.ToLower(text)
	for i, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			vector[i] = 1
		}
	}
	return vector, nil
}

// fakeGenerator echoes the retrieved context for answer calls and the user
// message for rewrite calls, and can be set to fail from a given call on.
type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	failAt int // 1-based call number to start failing on, 0 = never
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()
	if f.failAt > 0 && calls >= f.failAt {
		return "", errors.New("provider unavailable")
	}
	if prompt.System == "" {
		// Rewrite call: pass the question through as the search query
		return prompt.User, nil
	}
	// Answer call: ground the reply in the first context line
	ctxText := strings.TrimPrefix(prompt.System, answerSystemPrompt)
	line := ctxText
	if i := strings.Index(ctxText, "\n"); i >= 0 {
		line = ctxText[:i]
	}
	return "Based on the page: " + line, nil
}

func newTestService(t *testing.T, extractor Extractor, embedder domain.Embedder, generator domain.Generator) (*ChatService, *session.Store) {
	t.Helper()
	cfg := &config.Config{}
	cfg.RAG.ChunkSize = 40
	cfg.RAG.ChunkOverlap = 0
	cfg.RAG.TopK = 1
	store := session.NewStore(16)
	return NewChatService(cfg, store, extractor, embedder, generator, zap.NewNop()), store
}

func TestChatService_EndToEnd(t *testing.T) {
	extractor := &fakeExtractor{text: "The sky is blue. The grass is green."}
	embedder := &fakeEmbedder{keywords: []string{"sky", "grass"}}
	generator := &fakeGenerator{}
	svc, store := newTestService(t, extractor, embedder, generator)

	sessionID, err := svc.InitSession(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	answer, err := svc.Chat(context.Background(), sessionID, "What color is the sky?")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(answer), "blue")

	sess, err := store.Get(sessionID)
	require.NoError(t, err)
	history := sess.History()
	require.Len(t, history, 3) // greeting + human/ai pair
	assert.Equal(t, domain.RoleAI, history[0].Role)
	assert.Equal(t, domain.RoleHuman, history[1].Role)
	assert.Equal(t, "What color is the sky?", history[1].Content)
	assert.Equal(t, domain.RoleAI, history[2].Role)
	assert.Equal(t, answer, history[2].Content)
}

func TestChatService_InitSessionFetchFailure(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("connection refused")}
	svc, store := newTestService(t, extractor, &fakeEmbedder{keywords: []string{"x"}}, &fakeGenerator{})

	_, err := svc.InitSession(context.Background(), "https://unreachable.example")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexBuild)
	assert.Equal(t, 0, store.Len())
}

func TestChatService_InitSessionEmptyPage(t *testing.T) {
	extractor := &fakeExtractor{text: "   "}
	svc, store := newTestService(t, extractor, &fakeEmbedder{keywords: []string{"x"}}, &fakeGenerator{})

	_, err := svc.InitSession(context.Background(), "https://empty.example")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexBuild)
	assert.Equal(t, 0, store.Len())
}

func TestChatService_UnknownSession(t *testing.T) {
	svc, store := newTestService(t, &fakeExtractor{}, &fakeEmbedder{keywords: []string{"x"}}, &fakeGenerator{})

	_, err := svc.Chat(context.Background(), "nonexistent-id", "hi")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestChatService_HistoryGrowsByTwo(t *testing.T) {
	extractor := &fakeExtractor{text: "The sky is blue. The grass is green."}
	svc, store := newTestService(t, extractor, &fakeEmbedder{keywords: []string{"sky", "grass"}}, &fakeGenerator{})

	sessionID, err := svc.InitSession(context.Background(), "https://example.com")
	require.NoError(t, err)
	sess, err := store.Get(sessionID)
	require.NoError(t, err)

	for turn := 0; turn < 3; turn++ {
		before := len(sess.History())
		_, err := svc.Chat(context.Background(), sessionID, "What color is the grass?")
		require.NoError(t, err)
		assert.Equal(t, before+2, len(sess.History()))
	}
}

func TestChatService_NoMutationOnGenerationFailure(t *testing.T) {
	extractor := &fakeExtractor{text: "The sky is blue. The grass is green."}
	// No generation happens during init, so call 1 is the rewrite of the
	// first chat turn
	generator := &fakeGenerator{failAt: 1}
	svc, store := newTestService(t, extractor, &fakeEmbedder{keywords: []string{"sky"}}, generator)

	sessionID, err := svc.InitSession(context.Background(), "https://example.com")
	require.NoError(t, err)
	sess, err := store.Get(sessionID)
	require.NoError(t, err)
	before := len(sess.History())

	_, err = svc.Chat(context.Background(), sessionID, "What color is the sky?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, before, len(sess.History()))
}

func TestChatService_NoMutationOnRetrievalFailure(t *testing.T) {
	extractor := &fakeExtractor{text: "The sky is blue. The grass is green."}
	embedder := &fakeEmbedder{keywords: []string{"sky"}}
	svc, store := newTestService(t, extractor, embedder, &fakeGenerator{})

	sessionID, err := svc.InitSession(context.Background(), "https://example.com")
	require.NoError(t, err)
	sess, err := store.Get(sessionID)
	require.NoError(t, err)
	before := len(sess.History())

	// Embedding starts failing after the index is built
	embedder.err = errors.New("provider unavailable")

	_, err = svc.Chat(context.Background(), sessionID, "What color is the sky?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
	assert.Equal(t, before, len(sess.History()))
}

func TestChatService_ConcurrentChatsSerialized(t *testing.T) {
	extractor := &fakeExtractor{text: "The sky is blue. The grass is green."}
	svc, store := newTestService(t, extractor, &fakeEmbedder{keywords: []string{"sky", "grass"}}, &fakeGenerator{})

	sessionID, err := svc.InitSession(context.Background(), "https://example.com")
	require.NoError(t, err)
	sess, err := store.Get(sessionID)
	require.NoError(t, err)
	base := len(sess.History())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Chat(context.Background(), sessionID, "What color is the sky?")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history := sess.History()
	require.Len(t, history, base+4)
	// Turns landed as whole pairs in some total order, never interleaved
	for i := base; i < len(history); i += 2 {
		assert.Equal(t, domain.RoleHuman, history[i].Role)
		assert.Equal(t, domain.RoleAI, history[i+1].Role)
	}
}
