package ai

import "context"

// BoundEmbedder ties the client to one embedding configuration so the
// application layer can depend on a narrow collaborator.
type BoundEmbedder struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
}

func NewBoundEmbedder(client *OpenAICompatibleClient, cfg EmbeddingConfig) *BoundEmbedder {
	return &BoundEmbedder{client: client, cfg: cfg}
}

func (b *BoundEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return b.client.Embed(ctx, b.cfg, text)
}

func (b *BoundEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return b.client.EmbedBatch(ctx, b.cfg, texts)
}

// BoundChat ties the client to one chat configuration, exposing the
// single-turn system+user completion shape the QA pipeline needs.
type BoundChat struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewBoundChat(client *OpenAICompatibleClient, cfg ChatConfig) *BoundChat {
	return &BoundChat{client: client, cfg: cfg}
}

func (b *BoundChat) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return b.client.Complete(ctx, b.cfg, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}
