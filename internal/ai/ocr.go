package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// OCRConfig holds API settings for image-to-text over the multimodal
// chat endpoint.
type OCRConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

const ocrInstruction = "Extract all readable text from this image. Return only the extracted text, with no commentary."

// OCR sends the image to a vision-capable chat model and returns the
// extracted text.
func (c *OpenAICompatibleClient) OCR(ctx context.Context, cfg OCRConfig, imageData []byte, mimeType string) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("ocr input is empty")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageData)
	reqBody := map[string]interface{}{
		"model": cfg.Model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": ocrInstruction},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
	}

	raw, err := c.postJSON(ctx, cfg.BaseURL, "/chat/completions", cfg.APIKey, reqBody)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse ocr json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("ocr response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// OCRExtractor binds the client to one OCR configuration so callers can
// depend on a one-method collaborator.
type OCRExtractor struct {
	client *OpenAICompatibleClient
	cfg    OCRConfig
}

func NewOCRExtractor(client *OpenAICompatibleClient, cfg OCRConfig) *OCRExtractor {
	return &OCRExtractor{client: client, cfg: cfg}
}

func (o *OCRExtractor) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	return o.client.OCR(ctx, o.cfg, image, mimeType)
}
