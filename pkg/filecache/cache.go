package filecache

import (
	"context"
	"time"

	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/pkg/blobstore"
	"ai-roomviz-be/pkg/provider"
)

// Cache keeps provider-side copies of images so render calls can reference
// a hosted file instead of re-sending megabytes of pixels. Handles expire on
// the provider's schedule; anything inside the expiry margin is treated as
// already stale.
type Cache struct {
	renderer provider.Renderer
	blobs    *blobstore.Store
	margin   time.Duration
	log      logger.ILogger
}

func NewCache(renderer provider.Renderer, blobs *blobstore.Store, margin time.Duration, log logger.ILogger) *Cache {
	return &Cache{
		renderer: renderer,
		blobs:    blobs,
		margin:   margin,
		log:      log,
	}
}

// Usable reports whether a stored handle can still be referenced.
func (c *Cache) Usable(uri string, expiresAt *time.Time) bool {
	if uri == "" || expiresAt == nil {
		return false
	}
	return time.Now().Add(c.margin).Before(*expiresAt)
}

// EnsureUploaded returns an image input for the blob at key. When the stored
// handle is still usable it is referenced directly; otherwise the blob is
// downloaded and re-staged with the provider. A failed re-stage falls back to
// sending the bytes inline so the render itself still proceeds; the returned
// handle is nil in that case and callers must not persist one.
func (c *Cache) EnsureUploaded(ctx context.Context, key string, mimeType string, uri string, expiresAt *time.Time) (provider.ImageInput, *provider.FileHandle, error) {
	if c.Usable(uri, expiresAt) {
		return provider.ImageInput{FileURI: uri}, nil, nil
	}

	data, err := c.blobs.Download(ctx, key)
	if err != nil {
		return provider.ImageInput{}, nil, err
	}

	handle, err := c.renderer.UploadFile(ctx, data, mimeType)
	if err != nil {
		c.log.Warn("filecache", "provider upload failed, sending inline", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return provider.ImageInput{MIMEType: mimeType, Data: data}, nil, nil
	}

	return provider.ImageInput{FileURI: handle.URI}, handle, nil
}
