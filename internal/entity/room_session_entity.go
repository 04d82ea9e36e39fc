package entity

import (
	"time"

	"github.com/google/uuid"
)

// RoomSession is the ephemeral per-visit record for one shopper's
// uploaded room photo.
type RoomSession struct {
	Id               uuid.UUID
	ShopId           uuid.UUID
	OriginalImageRef string
	CleanedImageRef  string

	// Provider-side staged file handle for the current room image.
	// Must be nulled in the same transaction as any image mutation.
	ProviderFileURI       string
	ProviderFileExpiresAt *time.Time

	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (s *RoomSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// CurrentImageRef returns the cleaned image when present, else the
// original upload.
func (s *RoomSession) CurrentImageRef() string {
	if s.CleanedImageRef != "" {
		return s.CleanedImageRef
	}
	return s.OriginalImageRef
}

// InvalidateProviderFile drops the staged provider handle. Callers must
// persist this in the same transaction as the image mutation itself; a
// stale handle is worse than a cache miss.
func (s *RoomSession) InvalidateProviderFile() {
	s.ProviderFileURI = ""
	s.ProviderFileExpiresAt = nil
}
