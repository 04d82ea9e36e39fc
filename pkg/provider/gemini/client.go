package gemini

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ai-roomviz-be/pkg/provider"
)

// Client implements provider.Renderer against the Gemini image models.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func imagePart(in provider.ImageInput) genai.Part {
	if in.FileURI != "" {
		return genai.FileData{URI: in.FileURI}
	}
	return genai.Blob{MIMEType: in.MIMEType, Data: in.Data}
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) ([]byte, error) {
	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			return blob.Data, nil
		}
	}

	return nil, fmt.Errorf("response contained no image part")
}

func (c *Client) GenerateComposite(ctx context.Context, room provider.ImageInput, product provider.ImageInput, prompt string) ([]byte, error) {
	return c.generate(ctx,
		genai.Text(prompt),
		imagePart(room),
		imagePart(product),
	)
}

func (c *Client) RemoveBackground(ctx context.Context, product provider.ImageInput, prompt string) ([]byte, error) {
	return c.generate(ctx,
		genai.Text(prompt),
		imagePart(product),
	)
}

func (c *Client) CleanupRoom(ctx context.Context, room provider.ImageInput, mask *provider.ImageInput, prompt string) ([]byte, error) {
	parts := []genai.Part{
		genai.Text(prompt),
		imagePart(room),
	}
	if mask != nil {
		parts = append(parts, imagePart(*mask))
	}
	return c.generate(ctx, parts...)
}

func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType string) (*provider.FileHandle, error) {
	file, err := c.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return &provider.FileHandle{
		URI:       file.URI,
		ExpiresAt: file.ExpirationTime,
	}, nil
}
