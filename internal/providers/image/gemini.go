package image

import (
	"context"

	"github.com/pualine/Ellah-art-studio/internal/providers/genai"
)

// GeminiClient is the subset of the genai client used by the generator.
type GeminiClient interface {
	EditImage(ctx context.Context, req genai.EditRequest) (*genai.ImageAsset, error)
	Model() string
}

// GeminiGenerator adapts the Gemini client to the provider contract.
type GeminiGenerator struct {
	client GeminiClient
}

func NewGeminiGenerator(client GeminiClient) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	asset, err := g.client.EditImage(ctx, genai.EditRequest{
		Prompt:    req.Prompt,
		ImageData: req.Source.DataURI(),
		MimeType:  req.Source.MIME,
		RequestID: req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Data: asset.Data, MIME: asset.MimeType}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
