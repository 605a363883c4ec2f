package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docuchat/internal/extract"
	"docuchat/internal/model"
	"docuchat/internal/platform/blobstore"
)

const (
	DefaultMaxDocsPerUser  = 50
	DefaultMaxChunksPerDoc = 50
)

// DocumentStore and EmbeddingStore are the relational collaborator,
// narrowed to what ingestion and querying need.
type DocumentStore interface {
	CountByUserID(userID uint) (int64, error)
	CreateWithEmbeddings(doc *model.Document, rows []model.Embedding) error
	ListByUserID(userID uint) ([]model.Document, error)
	GetByIDAndUserID(id, userID uint) (*model.Document, error)
	DeleteByID(id uint) error
}

type EmbeddingStore interface {
	ListByDocumentIDs(documentIDs []uint) ([]model.Embedding, error)
	DeleteByDocumentID(documentID uint) error
}

// Extractor converts raw inputs into cleaned text.
type Extractor interface {
	Extract(ctx context.Context, input extract.Input) (*extract.Result, error)
}

// CorpusCache caches a user's corpus entries between queries. A nil
// cache is valid and simply disables caching.
type CorpusCache interface {
	Get(ctx context.Context, userID uint) ([]CorpusEntry, bool, error)
	Set(ctx context.Context, userID uint, corpus []CorpusEntry) error
	Invalidate(ctx context.Context, userID uint) error
}

type IngestLimits struct {
	MaxDocsPerUser  int
	MaxChunksPerDoc int
	ChunkSize       int
	ChunkOverlap    int
	EmbedBatchSize  int
	EmbedBatchDelay time.Duration
}

func (l IngestLimits) withDefaults() IngestLimits {
	if l.MaxDocsPerUser <= 0 {
		l.MaxDocsPerUser = DefaultMaxDocsPerUser
	}
	if l.MaxChunksPerDoc <= 0 {
		l.MaxChunksPerDoc = DefaultMaxChunksPerDoc
	}
	if l.ChunkSize <= 0 {
		l.ChunkSize = DefaultChunkSize
	}
	if l.ChunkOverlap <= 0 {
		l.ChunkOverlap = DefaultChunkOverlap
	}
	if l.EmbedBatchSize <= 0 {
		l.EmbedBatchSize = DefaultEmbedBatchSize
	}
	return l
}

type IngestService struct {
	docs       DocumentStore
	embeddings EmbeddingStore
	blobs      blobstore.Store
	extractor  Extractor
	embedder   Embedder
	cache      CorpusCache
	limits     IngestLimits
	logger     *slog.Logger
}

// IngestResult reports a finished ingestion. ChunksCreated can be lower
// than the number of chunks produced when some embedding batches failed.
type IngestResult struct {
	DocumentID    uint   `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

func NewIngestService(
	docs DocumentStore,
	embeddings EmbeddingStore,
	blobs blobstore.Store,
	extractor Extractor,
	embedder Embedder,
	cache CorpusCache,
	limits IngestLimits,
	logger *slog.Logger,
) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		docs:       docs,
		embeddings: embeddings,
		blobs:      blobs,
		extractor:  extractor,
		embedder:   embedder,
		cache:      cache,
		limits:     limits.withDefaults(),
		logger:     logger,
	}
}

type ingestRequest struct {
	kind      extract.Kind
	data      []byte
	filename  string
	mimeType  string
	sourceURL string
	docType   string
	storeBlob bool
}

// IngestFile ingests an uploaded file (plain text, PDF, CSV or image).
func (s *IngestService) IngestFile(ctx context.Context, userID uint, filename, mimeType string, data []byte) (*IngestResult, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || len(data) == 0 {
		return nil, ErrInvalidInput
	}
	kind, err := extract.DetectKind(mimeType, filename)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, userID, ingestRequest{
		kind:      kind,
		data:      data,
		filename:  filename,
		mimeType:  mimeType,
		docType:   model.DocTypeFile,
		storeBlob: true,
	})
}

// IngestLink fetches a web page and ingests its readable text. The page
// title becomes the document name.
func (s *IngestService) IngestLink(ctx context.Context, userID uint, url string) (*IngestResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrInvalidInput
	}
	return s.ingest(ctx, userID, ingestRequest{
		kind:      extract.KindLink,
		sourceURL: url,
		docType:   model.DocTypeLink,
	})
}

// IngestText ingests a pasted text snippet.
func (s *IngestService) IngestText(ctx context.Context, userID uint, title, content string) (*IngestResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	return s.ingest(ctx, userID, ingestRequest{
		kind:     extract.KindPlainText,
		data:     []byte(content),
		filename: title,
		docType:  model.DocTypeText,
	})
}

// ingest runs the pipeline: validate, extract, chunk, embed, persist.
// Extraction, chunking and total-embedding failures abort before any
// persistence; partial embedding failure only lowers ChunksCreated.
func (s *IngestService) ingest(ctx context.Context, userID uint, req ingestRequest) (*IngestResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	// validating: cheap rejection before any extraction work. This is a
	// check-then-act without a lock: two concurrent ingestions can both
	// pass and jointly exceed the cap.
	count, err := s.docs.CountByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if count >= int64(s.limits.MaxDocsPerUser) {
		return nil, fmt.Errorf("%w: %d documents", ErrDocumentLimitReached, count)
	}

	// extracting
	extracted, err := s.extractor.Extract(ctx, extract.Input{
		Kind:     req.kind,
		Data:     req.data,
		Filename: req.filename,
		MIMEType: req.mimeType,
		URL:      req.sourceURL,
	})
	if err != nil {
		return nil, err
	}

	// chunking
	chunks := Chunk(extracted.Text, s.limits.ChunkSize, s.limits.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, ErrNoContent
	}
	if len(chunks) > s.limits.MaxChunksPerDoc {
		return nil, fmt.Errorf("%w: %d chunks exceeds limit of %d", ErrTooLarge, len(chunks), s.limits.MaxChunksPerDoc)
	}

	// embedding
	batches := EmbedInBatches(ctx, s.embedder, chunks, s.limits.EmbedBatchSize, s.limits.EmbedBatchDelay, s.logger)
	embedded, err := FlattenBatches(chunks, batches)
	if err != nil {
		return nil, err
	}

	// persisting
	filename := req.filename
	if req.docType == model.DocTypeLink && extracted.Title != "" {
		filename = extracted.Title
	}

	filePath := model.BlobPathNone
	sizeBytes := int64(len(req.data))
	if req.storeBlob {
		key := fmt.Sprintf("%d/%s/%s", userID, uuid.NewString(), sanitizeBlobName(req.filename))
		if err := s.blobs.Put(ctx, key, req.data, req.mimeType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		filePath = key
	}
	if req.docType == model.DocTypeLink {
		sizeBytes = int64(len(extracted.Text))
	}

	doc := &model.Document{
		UserID:     userID,
		Filename:   filename,
		FilePath:   filePath,
		UploadDate: time.Now(),
		SizeBytes:  sizeBytes,
		DocType:    req.docType,
		SourceURL:  req.sourceURL,
	}
	rows := make([]model.Embedding, len(embedded))
	for i, e := range embedded {
		rows[i] = model.Embedding{
			ChunkText:  e.Text,
			ChunkIndex: e.Index,
		}
		rows[i].SetVector(e.Vector)
	}
	if err := s.docs.CreateWithEmbeddings(doc, rows); err != nil {
		if filePath != model.BlobPathNone {
			// No blob rollback: the orphaned blob is accepted collateral.
			s.logger.Warn("document persist failed after blob write, blob orphaned", "key", filePath, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}

	s.logger.Info("document ingested",
		"document_id", doc.ID,
		"user_id", userID,
		"doc_type", req.docType,
		"chunks_produced", len(chunks),
		"chunks_created", len(embedded),
	)
	return &IngestResult{
		DocumentID:    doc.ID,
		Filename:      filename,
		ChunksCreated: len(embedded),
	}, nil
}

// ListDocuments returns the user's documents, newest first.
func (s *IngestService) ListDocuments(userID uint) ([]model.Document, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	docs, err := s.docs.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return docs, nil
}

// DeleteDocument removes the blob (best effort), the embedding rows, then
// the document row. A failed blob delete never blocks metadata deletion.
func (s *IngestService) DeleteDocument(ctx context.Context, userID, documentID uint) error {
	if userID == 0 || documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if doc == nil {
		return ErrNotFound
	}

	if doc.FilePath != model.BlobPathNone {
		if err := s.blobs.Delete(ctx, doc.FilePath); err != nil {
			s.logger.Warn("blob delete failed, removing metadata anyway", "key", doc.FilePath, "error", err)
		}
	}
	if err := s.embeddings.DeleteByDocumentID(doc.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if err := s.docs.DeleteByID(doc.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
	s.logger.Info("document deleted", "document_id", doc.ID, "user_id", userID)
	return nil
}

func sanitizeBlobName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
