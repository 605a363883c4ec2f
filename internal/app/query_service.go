package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docuchat/internal/model"
)

// NoDocumentsAnswer is returned without touching any collaborator when
// the user has nothing to search.
const NoDocumentsAnswer = "No documents found. Upload a document, link or text snippet first, then ask your question again."

const groundingPrompt = "You are a helpful assistant. Answer the user's question using only the provided context. If the context does not contain the answer, say that you cannot find it in the documents. Do not make up facts."

const contextSeparator = "\n\n---\n\n"

const sourcePreviewLimit = 200

// TurnPublisher enqueues an answered turn for asynchronous persistence.
type TurnPublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

// Completer is the hosted chat-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// MessageStore reads back past turns for the history endpoint.
type MessageStore interface {
	ListByUserID(userID uint, limit int) ([]model.Message, error)
}

// Source cites one chunk the answer was grounded on.
type Source struct {
	DocumentID uint   `json:"document_id"`
	Filename   string `json:"filename"`
	Preview    string `json:"preview"`
}

type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type QueryService struct {
	docs      DocumentStore
	chunks    EmbeddingStore
	messages  MessageStore
	embedder  Embedder
	completer Completer
	publisher TurnPublisher
	cache     CorpusCache
	topK      int
	logger    *slog.Logger
}

func NewQueryService(
	docs DocumentStore,
	chunks EmbeddingStore,
	messages MessageStore,
	embedder Embedder,
	completer Completer,
	publisher TurnPublisher,
	cache CorpusCache,
	topK int,
	logger *slog.Logger,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		docs:      docs,
		chunks:    chunks,
		messages:  messages,
		embedder:  embedder,
		completer: completer,
		publisher: publisher,
		cache:     cache,
		topK:      topK,
		logger:    logger,
	}
}

// AnswerQuestion embeds the question, ranks the user's corpus and asks
// the chat model to answer from the top chunks. An empty corpus returns
// the canned answer without calling the embedding or chat collaborators.
func (s *QueryService) AnswerQuestion(ctx context.Context, userID uint, question string) (*AnswerResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	corpus, err := s.loadCorpus(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return &AnswerResult{Answer: NoDocumentsAnswer, Sources: []Source{}}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	top := RankTopK(queryVec, corpus, s.topK)

	answer, err := s.synthesize(ctx, question, top)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(top))
	for i, t := range top {
		sources[i] = Source{
			DocumentID: t.DocumentID,
			Filename:   t.Filename,
			Preview:    previewText(t.ChunkText, sourcePreviewLimit),
		}
	}

	s.publishTurn(ctx, userID, question, answer, sources)

	return &AnswerResult{Answer: answer, Sources: sources}, nil
}

// synthesize builds the context block and asks the chat model. The chunk
// separator is kept visible so the model sees chunk boundaries.
func (s *QueryService) synthesize(ctx context.Context, question string, top []ScoredChunk) (string, error) {
	parts := make([]string, len(top))
	for i, t := range top {
		parts[i] = t.ChunkText
	}
	contextBlock := strings.Join(parts, contextSeparator)

	userPrompt := "Context:\n" + contextBlock + "\n\nQuestion: " + question
	answer, err := s.completer.Complete(ctx, groundingPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", ErrSynthesisUnavailable)
	}
	return answer, nil
}

// loadCorpus joins embedding rows with their documents' names, going
// through the cache when one is configured.
func (s *QueryService) loadCorpus(ctx context.Context, userID uint) ([]CorpusEntry, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, userID); err == nil && hit {
			return cached, nil
		}
	}

	docs, err := s.docs.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	docNames := make(map[uint]string, len(docs))
	docIDs := make([]uint, 0, len(docs))
	for _, d := range docs {
		docNames[d.ID] = d.Filename
		docIDs = append(docIDs, d.ID)
	}

	rows, err := s.chunks.ListByDocumentIDs(docIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	corpus := make([]CorpusEntry, 0, len(rows))
	for i := range rows {
		corpus = append(corpus, CorpusEntry{
			DocumentID: rows[i].DocumentID,
			Filename:   docNames[rows[i].DocumentID],
			ChunkText:  rows[i].ChunkText,
			Vector:     rows[i].Vector(),
		})
	}

	if s.cache != nil && len(corpus) > 0 {
		_ = s.cache.Set(ctx, userID, corpus)
	}
	return corpus, nil
}

// publishTurn records the turn for audit. Failure to enqueue is logged,
// not surfaced: the user already has their answer.
func (s *QueryService) publishTurn(ctx context.Context, userID uint, question, answer string, sources []Source) {
	if s.publisher == nil {
		return
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		sourcesJSON = []byte("[]")
	}
	msg := model.Message{
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		Sources:   string(sourcesJSON),
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("publish chat turn failed", "user_id", userID, "error", err)
	}
}

// History returns the user's most recent answered turns.
func (s *QueryService) History(userID uint, limit int) ([]model.Message, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	messages, err := s.messages.ListByUserID(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return messages, nil
}

func previewText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
