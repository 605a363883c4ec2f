package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

type fakeCompleter struct {
	answer        string
	err           error
	calls         int
	systemPrompts []string
	userPrompts   []string
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.systemPrompts = append(f.systemPrompts, systemPrompt)
	f.userPrompts = append(f.userPrompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakePublisher struct {
	published []model.Message
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, msg model.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type fakeMessageStore struct {
	messages []model.Message
}

func (f *fakeMessageStore) ListByUserID(uint, int) ([]model.Message, error) {
	return f.messages, nil
}

func embeddingRow(docID uint, index int, text string, vec []float32) model.Embedding {
	row := model.Embedding{DocumentID: docID, ChunkText: text, ChunkIndex: index}
	row.SetVector(vec)
	return row
}

func newQueryFixture(docs *fakeDocStore, rows *fakeEmbeddingStore, completer *fakeCompleter, publisher *fakePublisher, embedder Embedder) *QueryService {
	return NewQueryService(docs, rows, &fakeMessageStore{}, embedder, completer, publisher, nil, 0, nil)
}

func TestAnswerQuestion_EmptyCorpusReturnsCannedAnswer(t *testing.T) {
	embedder := &scriptedEmbedder{}
	completer := &fakeCompleter{answer: "should never be used"}
	svc := newQueryFixture(&fakeDocStore{}, &fakeEmbeddingStore{}, completer, &fakePublisher{}, embedder)

	result, err := svc.AnswerQuestion(context.Background(), 7, "what is in my documents?")
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.NotNil(t, result.Sources, "sources marshals as [], not null")
	assert.Zero(t, embedder.embedCalls)
	assert.Zero(t, completer.calls)
}

func TestAnswerQuestion_GroundedAnswerWithSources(t *testing.T) {
	docs := &fakeDocStore{docs: []model.Document{
		{ID: 1, Filename: "handbook.pdf"},
		{ID: 2, Filename: "faq.txt"},
	}}
	rows := &fakeEmbeddingStore{rows: []model.Embedding{
		embeddingRow(1, 0, "Employees accrue 25 vacation days per year.", []float32{1, 0}),
		embeddingRow(1, 1, "Remote work requires manager approval.", []float32{0.9, 0.1}),
		embeddingRow(2, 0, "The cafeteria opens at 8am.", []float32{0, 1}),
	}}
	completer := &fakeCompleter{answer: "You accrue 25 vacation days per year."}
	publisher := &fakePublisher{}
	svc := newQueryFixture(docs, rows, completer, publisher, &alignedEmbedder{vector: []float32{1, 0}})

	result, err := svc.AnswerQuestion(context.Background(), 7, "How many vacation days do I get?")
	require.NoError(t, err)
	assert.Equal(t, "You accrue 25 vacation days per year.", result.Answer)

	require.Len(t, result.Sources, 3)
	assert.Equal(t, uint(1), result.Sources[0].DocumentID)
	assert.Equal(t, "handbook.pdf", result.Sources[0].Filename)
	assert.Equal(t, "Employees accrue 25 vacation days per year.", result.Sources[0].Preview)

	require.Len(t, completer.userPrompts, 1)
	prompt := completer.userPrompts[0]
	assert.Contains(t, prompt, "Employees accrue 25 vacation days")
	assert.Contains(t, prompt, "\n\n---\n\n")
	assert.Contains(t, prompt, "Question: How many vacation days do I get?")
	assert.Equal(t, groundingPrompt, completer.systemPrompts[0])

	require.Len(t, publisher.published, 1)
	turn := publisher.published[0]
	assert.Equal(t, uint(7), turn.UserID)
	assert.Equal(t, "How many vacation days do I get?", turn.Question)
	assert.Contains(t, turn.Sources, "handbook.pdf")
}

func TestAnswerQuestion_TopKLimitsSources(t *testing.T) {
	docs := &fakeDocStore{docs: []model.Document{{ID: 1, Filename: "big.txt"}}}
	var stored []model.Embedding
	for i := 0; i < 10; i++ {
		stored = append(stored, embeddingRow(1, i, "chunk", []float32{float32(i), 1}))
	}
	rows := &fakeEmbeddingStore{rows: stored}
	completer := &fakeCompleter{answer: "ok"}
	svc := newQueryFixture(docs, rows, completer, &fakePublisher{}, &alignedEmbedder{vector: []float32{1, 1}})

	result, err := svc.AnswerQuestion(context.Background(), 7, "anything")
	require.NoError(t, err)
	assert.Len(t, result.Sources, DefaultTopK)
}

func TestAnswerQuestion_PreviewTruncatedTo200Runes(t *testing.T) {
	long := strings.Repeat("é", 500)
	docs := &fakeDocStore{docs: []model.Document{{ID: 1, Filename: "long.txt"}}}
	rows := &fakeEmbeddingStore{rows: []model.Embedding{embeddingRow(1, 0, long, []float32{1, 0})}}
	completer := &fakeCompleter{answer: "ok"}
	svc := newQueryFixture(docs, rows, completer, &fakePublisher{}, &alignedEmbedder{vector: []float32{1, 0}})

	result, err := svc.AnswerQuestion(context.Background(), 7, "anything")
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, sourcePreviewLimit, len([]rune(result.Sources[0].Preview)))
}

func TestAnswerQuestion_EmbeddingFailure(t *testing.T) {
	docs := &fakeDocStore{docs: []model.Document{{ID: 1, Filename: "a.txt"}}}
	rows := &fakeEmbeddingStore{rows: []model.Embedding{embeddingRow(1, 0, "text", []float32{1, 0})}}
	svc := newQueryFixture(docs, rows, &fakeCompleter{answer: "ok"}, &fakePublisher{}, &failingEmbedder{})

	_, err := svc.AnswerQuestion(context.Background(), 7, "anything")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestAnswerQuestion_SynthesisFailure(t *testing.T) {
	docs := &fakeDocStore{docs: []model.Document{{ID: 1, Filename: "a.txt"}}}
	rows := &fakeEmbeddingStore{rows: []model.Embedding{embeddingRow(1, 0, "text", []float32{1, 0})}}
	publisher := &fakePublisher{}

	for name, completer := range map[string]*fakeCompleter{
		"upstream error": {err: errors.New("503 from provider")},
		"empty answer":   {answer: "   "},
	} {
		svc := newQueryFixture(docs, rows, completer, publisher, &alignedEmbedder{vector: []float32{1, 0}})
		_, err := svc.AnswerQuestion(context.Background(), 7, "anything")
		assert.ErrorIs(t, err, ErrSynthesisUnavailable, name)
	}
	assert.Empty(t, publisher.published, "failed turns are not recorded")
}

func TestAnswerQuestion_PublishFailureDoesNotFailRequest(t *testing.T) {
	docs := &fakeDocStore{docs: []model.Document{{ID: 1, Filename: "a.txt"}}}
	rows := &fakeEmbeddingStore{rows: []model.Embedding{embeddingRow(1, 0, "text", []float32{1, 0})}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := newQueryFixture(docs, rows, &fakeCompleter{answer: "fine"}, publisher, &alignedEmbedder{vector: []float32{1, 0}})

	result, err := svc.AnswerQuestion(context.Background(), 7, "anything")
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Answer)
}

func TestAnswerQuestion_BlankQuestionRejected(t *testing.T) {
	svc := newQueryFixture(&fakeDocStore{}, &fakeEmbeddingStore{}, &fakeCompleter{}, &fakePublisher{}, &scriptedEmbedder{})
	_, err := svc.AnswerQuestion(context.Background(), 7, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type alignedEmbedder struct {
	vector []float32
}

func (a *alignedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return a.vector, nil
}

func (a *alignedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = a.vector
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding endpoint unreachable")
}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding endpoint unreachable")
}
