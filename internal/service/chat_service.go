package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pagechat/internal/config"
	"pagechat/internal/domain"
	"pagechat/internal/index"
	"pagechat/internal/session"
)

const answerSystemPrompt = "Answer the user's questions using this context:\n\n"

// Extractor fetches a web page and returns its extracted text.
type Extractor interface {
	FetchAndExtract(ctx context.Context, url string) (string, error)
}

// ChatService owns the session lifecycle and the retrieval loop: ingest a
// page into a per-session vector index, then answer each turn by rewriting
// the question against history, retrieving grounding chunks, and generating
// a grounded answer.
type ChatService struct {
	cfg       *config.Config
	store     *session.Store
	extractor Extractor
	embedder  domain.Embedder
	generator domain.Generator
	rewriter  *QueryRewriter
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	store *session.Store,
	extractor Extractor,
	embedder domain.Embedder,
	generator domain.Generator,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		generator: generator,
		rewriter:  NewQueryRewriter(generator),
		logger:    logger,
	}
}

// InitSession fetches the page at url, builds its vector index, and registers
// a new session seeded with the greeting turn. Any fetch, extraction, or
// embedding failure surfaces as domain.ErrIndexBuild and no session is
// created.
func (s *ChatService) InitSession(ctx context.Context, url string) (string, error) {
	text, err := s.extractor.FetchAndExtract(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIndexBuild, err)
	}

	ix, err := index.BuildIndex(ctx, text, s.cfg.RAG.ChunkSize, s.cfg.RAG.ChunkOverlap, s.embedder)
	if err != nil {
		return "", err
	}

	sess := s.store.Create(ix)
	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("url", url),
		zap.Int("chunks", ix.Len()),
	)
	return sess.ID, nil
}

// Chat answers one conversation turn for the given session. Turns on the
// same session are serialized; the session lock is held for the whole
// rewrite-retrieve-generate cycle and released on every exit path.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (string, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	sess.Lock()
	defer sess.Unlock()

	answer, err := s.answer(ctx, sess, message)
	if err != nil {
		s.logger.Warn("chat turn failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return "", err
	}
	return answer, nil
}

// answer runs one grounded turn. The human/ai pair is appended only after
// the answer call succeeds, so a failed turn leaves the log untouched.
// Callers hold the session lock.
func (s *ChatService) answer(ctx context.Context, sess *session.Session, message string) (string, error) {
	history := sess.History()

	query, err := s.rewriter.Rewrite(ctx, history, message)
	if err != nil {
		return "", err
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: embed query: %v", domain.ErrRetrieval, err)
	}
	chunks := sess.Index.Query(vector, s.cfg.RAG.TopK)

	prompt := domain.Prompt{
		System:  answerSystemPrompt + joinChunks(chunks),
		History: history,
		User:    message,
	}
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: answer: %v", domain.ErrGeneration, err)
	}

	sess.Append(
		domain.Turn{Role: domain.RoleHuman, Content: message},
		domain.Turn{Role: domain.RoleAI, Content: answer},
	)
	return answer, nil
}

func joinChunks(chunks []index.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}
