package mapper

import (
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/model"

	"gorm.io/datatypes"
)

type MonitorEventMapper struct{}

func NewMonitorEventMapper() *MonitorEventMapper {
	return &MonitorEventMapper{}
}

func (m *MonitorEventMapper) ToEntity(e *model.MonitorEvent) *entity.MonitorEvent {
	if e == nil {
		return nil
	}
	return &entity.MonitorEvent{
		Id:        e.Id,
		RunId:     e.RunId,
		ShopId:    e.ShopId,
		Type:      e.Type,
		Severity:  entity.EventSeverity(e.Severity),
		Payload:   []byte(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

func (m *MonitorEventMapper) ToModel(e *entity.MonitorEvent) *model.MonitorEvent {
	if e == nil {
		return nil
	}
	return &model.MonitorEvent{
		Id:        e.Id,
		RunId:     e.RunId,
		ShopId:    e.ShopId,
		Type:      e.Type,
		Severity:  string(e.Severity),
		Payload:   datatypes.JSON(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

func (m *MonitorEventMapper) ToEntities(events []*model.MonitorEvent) []*entity.MonitorEvent {
	entities := make([]*entity.MonitorEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

type MonitorArtifactMapper struct{}

func NewMonitorArtifactMapper() *MonitorArtifactMapper {
	return &MonitorArtifactMapper{}
}

func (m *MonitorArtifactMapper) ToEntity(a *model.MonitorArtifact) *entity.MonitorArtifact {
	if a == nil {
		return nil
	}
	return &entity.MonitorArtifact{
		Id:          a.Id,
		RunId:       a.RunId,
		ShopId:      a.ShopId,
		BlobKey:     a.BlobKey,
		ByteSize:    a.ByteSize,
		ContentType: a.ContentType,
		ExpiresAt:   a.ExpiresAt,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *MonitorArtifactMapper) ToModel(a *entity.MonitorArtifact) *model.MonitorArtifact {
	if a == nil {
		return nil
	}
	return &model.MonitorArtifact{
		Id:          a.Id,
		RunId:       a.RunId,
		ShopId:      a.ShopId,
		BlobKey:     a.BlobKey,
		ByteSize:    a.ByteSize,
		ContentType: a.ContentType,
		ExpiresAt:   a.ExpiresAt,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *MonitorArtifactMapper) ToEntities(artifacts []*model.MonitorArtifact) []*entity.MonitorArtifact {
	entities := make([]*entity.MonitorArtifact, len(artifacts))
	for i, a := range artifacts {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
