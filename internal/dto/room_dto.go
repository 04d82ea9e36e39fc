package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSessionResponse struct {
	SessionId    uuid.UUID `json:"session_id"`
	UploadTarget string    `json:"upload_target"`
	ImageRef     string    `json:"image_ref"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AttachImageRequest struct {
	SessionId uuid.UUID `json:"-"`
	ImageRef  string    `json:"image_ref" validate:"required"`
}

type AttachImageResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	ImageRef  string    `json:"image_ref"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CleanupRoomRequest struct {
	SessionId uuid.UUID `json:"-"`
	MaskRef   string    `json:"mask_ref,omitempty"`
}

type CleanupRoomResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

type PollJobResponse struct {
	JobId    uuid.UUID `json:"job_id"`
	Status   string    `json:"status"`
	ImageRef string    `json:"image_ref,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	Error    string    `json:"error,omitempty"`
}
