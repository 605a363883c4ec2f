package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/extract"
	"docuchat/internal/transport/http/response"
)

type DocumentHandler struct {
	ingestService  *app.IngestService
	maxUploadBytes int64
}

type CreateLinkRequest struct {
	URL string `json:"url" binding:"required,max=1024"`
}

type CreateTextRequest struct {
	Title   string `json:"title" binding:"max=256"`
	Content string `json:"content" binding:"required"`
}

func NewDocumentHandler(ingestService *app.IngestService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &DocumentHandler{
		ingestService:  ingestService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload accepts a multipart form with "file" and ingests it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodePayloadTooLarge, "file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.ingestService.IngestFile(c.Request.Context(), userID, file.Filename, file.Header.Get("Content-Type"), data)
	if err != nil {
		writeIngestError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateLink ingests the readable text of a web page.
func (h *DocumentHandler) CreateLink(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.ingestService.IngestLink(c.Request.Context(), userID, req.URL)
	if err != nil {
		writeIngestError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateText ingests a pasted text snippet.
func (h *DocumentHandler) CreateText(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.ingestService.IngestText(c.Request.Context(), userID, req.Title, req.Content)
	if err != nil {
		writeIngestError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docs, err := h.ingestService.ListDocuments(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.ingestService.DeleteDocument(c.Request.Context(), userID, docID); err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeStorageFailure, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

// writeIngestError maps pipeline failures to short user-facing messages;
// the wrapped detail goes into the details field for operators.
func writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid input")
	case errors.Is(err, extract.ErrUnsupportedType):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeUnsupportedType, "unsupported file type", err.Error())
	case errors.Is(err, extract.ErrUnreadableContent):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeUnreadableContent, "could not read any text from this document", err.Error())
	case errors.Is(err, extract.ErrPayloadTooLarge):
		response.Error(c, http.StatusBadRequest, response.CodePayloadTooLarge, "file is too large")
	case errors.Is(err, extract.ErrFetchFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeFetchFailed, "could not fetch the link", err.Error())
	case errors.Is(err, app.ErrNoContent):
		response.Error(c, http.StatusBadRequest, response.CodeNoContent, "document has no content")
	case errors.Is(err, app.ErrTooLarge):
		response.Error(c, http.StatusBadRequest, response.CodeTooLarge, "document is too large to index")
	case errors.Is(err, app.ErrDocumentLimitReached):
		response.Error(c, http.StatusBadRequest, response.CodeDocumentLimit, "document limit reached, delete a document first")
	case errors.Is(err, app.ErrEmbeddingUnavailable):
		response.Error(c, http.StatusBadGateway, response.CodeEmbeddingDown, "embedding service is unavailable, try again later")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
	}
}
