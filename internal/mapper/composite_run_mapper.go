package mapper

import (
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/model"

	"gorm.io/datatypes"
)

type CompositeRunMapper struct{}

func NewCompositeRunMapper() *CompositeRunMapper {
	return &CompositeRunMapper{}
}

func (m *CompositeRunMapper) ToEntity(r *model.CompositeRun) *entity.CompositeRun {
	if r == nil {
		return nil
	}
	return &entity.CompositeRun{
		Id:                r.Id,
		ShopId:            r.ShopId,
		ProductId:         r.ProductId,
		SessionId:         r.SessionId,
		Status:            entity.RunStatus(r.Status),
		PlacementSnapshot: []byte(r.PlacementSnapshot),
		FactsSnapshot:     []byte(r.FactsSnapshot),
		RequestedVariants: r.RequestedVariants,
		TotalDurationMs:   r.TotalDurationMs,
		CreatedAt:         r.CreatedAt,
		CompletedAt:       r.CompletedAt,
	}
}

func (m *CompositeRunMapper) ToModel(r *entity.CompositeRun) *model.CompositeRun {
	if r == nil {
		return nil
	}
	return &model.CompositeRun{
		Id:                r.Id,
		ShopId:            r.ShopId,
		ProductId:         r.ProductId,
		SessionId:         r.SessionId,
		Status:            string(r.Status),
		PlacementSnapshot: datatypes.JSON(r.PlacementSnapshot),
		FactsSnapshot:     datatypes.JSON(r.FactsSnapshot),
		RequestedVariants: r.RequestedVariants,
		TotalDurationMs:   r.TotalDurationMs,
		CreatedAt:         r.CreatedAt,
		CompletedAt:       r.CompletedAt,
	}
}

func (m *CompositeRunMapper) ToEntities(runs []*model.CompositeRun) []*entity.CompositeRun {
	entities := make([]*entity.CompositeRun, len(runs))
	for i, r := range runs {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

type VariantResultMapper struct{}

func NewVariantResultMapper() *VariantResultMapper {
	return &VariantResultMapper{}
}

func (m *VariantResultMapper) ToEntity(v *model.VariantResult) *entity.VariantResult {
	if v == nil {
		return nil
	}
	return &entity.VariantResult{
		Id:             v.Id,
		RunId:          v.RunId,
		VariantKey:     v.VariantKey,
		Status:         entity.VariantStatus(v.Status),
		LatencyMs:      v.LatencyMs,
		ErrorMessage:   v.ErrorMessage,
		OutputImageRef: v.OutputImageRef,
		CreatedAt:      v.CreatedAt,
	}
}

func (m *VariantResultMapper) ToModel(v *entity.VariantResult) *model.VariantResult {
	if v == nil {
		return nil
	}
	return &model.VariantResult{
		Id:             v.Id,
		RunId:          v.RunId,
		VariantKey:     v.VariantKey,
		Status:         string(v.Status),
		LatencyMs:      v.LatencyMs,
		ErrorMessage:   v.ErrorMessage,
		OutputImageRef: v.OutputImageRef,
		CreatedAt:      v.CreatedAt,
	}
}

func (m *VariantResultMapper) ToEntities(results []*model.VariantResult) []*entity.VariantResult {
	entities := make([]*entity.VariantResult, len(results))
	for i, v := range results {
		entities[i] = m.ToEntity(v)
	}
	return entities
}
