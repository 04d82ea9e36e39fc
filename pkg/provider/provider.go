package provider

import (
	"context"
	"time"
)

// ImageInput is a provider-agnostic reference to one input image. Exactly one
// of FileURI or Data should be set; FileURI is preferred when the provider
// has a hosted copy that is still valid.
type ImageInput struct {
	MIMEType string
	Data     []byte
	FileURI  string
}

// FileHandle identifies a hosted copy of an image on the provider side.
// Hosted files expire; callers must re-upload after ExpiresAt.
type FileHandle struct {
	URI       string
	ExpiresAt time.Time
}

// Renderer defines the contract for any image-generation backend.
type Renderer interface {
	// GenerateComposite places the product into the room photo and returns
	// the rendered image bytes.
	GenerateComposite(ctx context.Context, room ImageInput, product ImageInput, prompt string) ([]byte, error)

	// RemoveBackground isolates the product subject on a transparent
	// background.
	RemoveBackground(ctx context.Context, product ImageInput, prompt string) ([]byte, error)

	// CleanupRoom removes furniture or clutter from the room photo, scoped
	// to the mask region when a mask is provided.
	CleanupRoom(ctx context.Context, room ImageInput, mask *ImageInput, prompt string) ([]byte, error)

	// UploadFile pushes image bytes to the provider's file store so later
	// calls can reference them without re-sending the payload.
	UploadFile(ctx context.Context, data []byte, mimeType string) (*FileHandle, error)
}
