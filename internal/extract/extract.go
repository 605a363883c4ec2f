// Package extract converts raw ingestion inputs (uploaded files, fetched
// pages, pasted text) into cleaned plain text ready for chunking.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"docuchat/internal/pkg/pdfextract"
)

var (
	ErrUnsupportedType   = errors.New("unsupported document type")
	ErrUnreadableContent = errors.New("content is not readable text")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrFetchFailed       = errors.New("fetching url failed")
)

// Kind is the extraction variant, chosen once at ingestion entry.
type Kind int

const (
	KindPlainText Kind = iota
	KindPDF
	KindCSV
	KindImage
	KindLink
)

// minimum extracted length heuristics
const (
	minPDFTextLen  = 100
	minLinkTextLen = 100
	minOCRTextLen  = 5
)

// OCRClient is the hosted image-to-text collaborator.
type OCRClient interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Input is one raw document to extract. Data and declared type are used
// for file kinds; URL for links.
type Input struct {
	Kind     Kind
	Data     []byte
	Filename string
	MIMEType string
	URL      string
}

// Result is the cleaned text plus a display title when the source
// provides one (currently links only).
type Result struct {
	Text  string
	Title string
}

type Service struct {
	ocr           OCRClient
	httpClient    *http.Client
	maxImageBytes int
	userAgent     string
	logger        *slog.Logger
}

func NewService(ocr OCRClient, maxImageBytes int, logger *slog.Logger) *Service {
	if maxImageBytes <= 0 {
		maxImageBytes = 1 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ocr:           ocr,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		maxImageBytes: maxImageBytes,
		userAgent:     "DocuChat/1.0 (+document indexing bot)",
		logger:        logger,
	}
}

// SetHTTPClient overrides the fetch client, mainly for httptest servers.
func (s *Service) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// DetectKind picks the extraction variant from the declared MIME type,
// falling back to the filename extension. Declared type wins.
func DetectKind(mimeType, filename string) (Kind, error) {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case mime == "application/pdf":
		return KindPDF, nil
	case mime == "text/csv" || mime == "application/csv":
		return KindCSV, nil
	case strings.HasPrefix(mime, "image/"):
		return KindImage, nil
	case mime == "text/plain" || mime == "text/markdown":
		return KindPlainText, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".csv":
		return KindCSV, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return KindImage, nil
	case ".txt", ".md", ".text":
		return KindPlainText, nil
	}

	rejected := mime
	if rejected == "" {
		rejected = filepath.Ext(filename)
	}
	if rejected == "" {
		rejected = "unknown"
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, rejected)
}

// Extract runs the variant-specific extraction and normalization.
func (s *Service) Extract(ctx context.Context, input Input) (*Result, error) {
	start := time.Now()
	s.logger.Info("extraction started",
		"kind", kindName(input.Kind),
		"bytes", len(input.Data),
		"filename", input.Filename,
	)

	var (
		result *Result
		err    error
	)
	switch input.Kind {
	case KindPlainText:
		result, err = s.extractPlainText(input.Data)
	case KindPDF:
		result, err = s.extractPDF(input.Data)
	case KindCSV:
		result, err = s.extractCSV(input.Data)
	case KindImage:
		result, err = s.extractImage(ctx, input.Data, input.MIMEType)
	case KindLink:
		result, err = s.extractLink(ctx, input.URL)
	default:
		err = fmt.Errorf("%w: kind %d", ErrUnsupportedType, input.Kind)
	}
	if err != nil {
		s.logger.Warn("extraction failed", "kind", kindName(input.Kind), "error", err)
		return nil, err
	}

	s.logger.Info("extraction finished",
		"kind", kindName(input.Kind),
		"chars", len(result.Text),
		"elapsed", time.Since(start),
	)
	return result, nil
}

func (s *Service) extractPlainText(data []byte) (*Result, error) {
	text := string(data)
	if !mostlyPrintable(text) {
		return nil, fmt.Errorf("%w: file does not look like plain text", ErrUnreadableContent)
	}
	return &Result{Text: normalizeText(text)}, nil
}

func (s *Service) extractPDF(data []byte) (*Result, error) {
	pages, err := pdfextract.ExtractPages(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableContent, err)
	}
	text := strings.Join(pages, "\n\n")
	if len(strings.TrimSpace(text)) < minPDFTextLen {
		return nil, fmt.Errorf("%w: pdf has no extractable text (scanned document?)", ErrUnreadableContent)
	}
	return &Result{Text: normalizeText(text)}, nil
}

func (s *Service) extractImage(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	if len(data) > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrPayloadTooLarge, s.maxImageBytes)
	}
	text, err := s.ocr.ExtractText(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: ocr failed: %v", ErrUnreadableContent, err)
	}
	if len(strings.TrimSpace(text)) < minOCRTextLen {
		return nil, fmt.Errorf("%w: no text recognized in image", ErrUnreadableContent)
	}
	return &Result{Text: normalizeText(text)}, nil
}

func kindName(k Kind) string {
	switch k {
	case KindPlainText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindCSV:
		return "csv"
	case KindImage:
		return "image"
	case KindLink:
		return "link"
	}
	return "unknown"
}
