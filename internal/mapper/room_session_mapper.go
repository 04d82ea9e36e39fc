package mapper

import (
	"time"

	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/model"
)

type RoomSessionMapper struct{}

func NewRoomSessionMapper() *RoomSessionMapper {
	return &RoomSessionMapper{}
}

func (m *RoomSessionMapper) ToEntity(s *model.RoomSession) *entity.RoomSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.RoomSession{
		Id:                    s.Id,
		ShopId:                s.ShopId,
		OriginalImageRef:      s.OriginalImageRef,
		CleanedImageRef:       s.CleanedImageRef,
		ProviderFileURI:       s.ProviderFileURI,
		ProviderFileExpiresAt: s.ProviderFileExpiresAt,
		ExpiresAt:             s.ExpiresAt,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             updatedAt,
	}
}

func (m *RoomSessionMapper) ToModel(s *entity.RoomSession) *model.RoomSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.RoomSession{
		Id:                    s.Id,
		ShopId:                s.ShopId,
		OriginalImageRef:      s.OriginalImageRef,
		CleanedImageRef:       s.CleanedImageRef,
		ProviderFileURI:       s.ProviderFileURI,
		ProviderFileExpiresAt: s.ProviderFileExpiresAt,
		ExpiresAt:             s.ExpiresAt,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             updatedAt,
	}
}

type RenderJobMapper struct{}

func NewRenderJobMapper() *RenderJobMapper {
	return &RenderJobMapper{}
}

func (m *RenderJobMapper) ToEntity(j *model.RenderJob) *entity.RenderJob {
	if j == nil {
		return nil
	}
	return &entity.RenderJob{
		Id:             j.Id,
		ShopId:         j.ShopId,
		SessionId:      j.SessionId,
		Kind:           entity.RenderJobKind(j.Kind),
		Status:         entity.RenderJobStatus(j.Status),
		OutputImageRef: j.OutputImageRef,
		ErrorCode:      j.ErrorCode,
		ErrorMessage:   j.ErrorMessage,
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
	}
}

func (m *RenderJobMapper) ToModel(j *entity.RenderJob) *model.RenderJob {
	if j == nil {
		return nil
	}
	return &model.RenderJob{
		Id:             j.Id,
		ShopId:         j.ShopId,
		SessionId:      j.SessionId,
		Kind:           string(j.Kind),
		Status:         string(j.Status),
		OutputImageRef: j.OutputImageRef,
		ErrorCode:      j.ErrorCode,
		ErrorMessage:   j.ErrorMessage,
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
	}
}
