package service

import (
	"context"
	"time"

	"ai-roomviz-be/internal/dto"
	"ai-roomviz-be/internal/entity"
	"ai-roomviz-be/internal/pkg/logger"
	"ai-roomviz-be/internal/repository/specification"
	"ai-roomviz-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IShopService interface {
	Install(ctx context.Context, req *dto.InstallWebhookRequest) error
	Uninstall(ctx context.Context, req *dto.UninstallWebhookRequest) error
	// Redact hard-deletes every row the shop ever produced. Required by
	// the platform's data-erasure webhook; irreversible.
	Redact(ctx context.Context, req *dto.RedactWebhookRequest) error
}

type shopService struct {
	uowFactory             unitofwork.RepositoryFactory
	generationDailyLimit   int
	generationMonthlyLimit int
	log                    logger.ILogger
}

func NewShopService(
	uowFactory unitofwork.RepositoryFactory,
	generationDailyLimit int,
	generationMonthlyLimit int,
	log logger.ILogger,
) IShopService {
	return &shopService{
		uowFactory:             uowFactory,
		generationDailyLimit:   generationDailyLimit,
		generationMonthlyLimit: generationMonthlyLimit,
		log:                    log,
	}
}

func (s *shopService) Install(ctx context.Context, req *dto.InstallWebhookRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// A reinstall revives the soft-deleted row with its assets intact.
	existing, err := uow.ShopRepository().FindOneUnscoped(ctx, specification.ByDomain{Domain: req.ShopDomain})
	if err != nil {
		return err
	}

	if existing != nil {
		if !existing.IsInstalled() {
			if err := uow.ShopRepository().RestoreByDomain(ctx, req.ShopDomain); err != nil {
				return err
			}
			s.log.Info("shop", "shop reinstalled", map[string]interface{}{
				"domain": req.ShopDomain,
			})
		}
		existing.AccessToken = req.AccessToken
		existing.UninstalledAt = nil
		return uow.ShopRepository().Update(ctx, existing)
	}

	now := time.Now()
	shop := &entity.Shop{
		Id:                     uuid.New(),
		Domain:                 req.ShopDomain,
		AccessToken:            req.AccessToken,
		InstalledAt:            now,
		GenerationDailyLimit:   s.generationDailyLimit,
		GenerationMonthlyLimit: s.generationMonthlyLimit,
		LastDailyReset:         now,
		LastMonthlyReset:       now,
		CreatedAt:              now,
	}
	if err := uow.ShopRepository().Create(ctx, shop); err != nil {
		return err
	}

	s.log.Info("shop", "shop installed", map[string]interface{}{
		"domain": req.ShopDomain,
	})
	return nil
}

func (s *shopService) Uninstall(ctx context.Context, req *dto.UninstallWebhookRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := uow.ShopRepository().FindOne(ctx, specification.ByDomain{Domain: req.ShopDomain})
	if err != nil {
		return err
	}
	if shop == nil {
		// Duplicate webhook delivery, nothing to do.
		return nil
	}

	if err := uow.ShopRepository().SoftDelete(ctx, shop.Id); err != nil {
		return err
	}

	s.log.Info("shop", "shop uninstalled", map[string]interface{}{
		"domain": req.ShopDomain,
	})
	return nil
}

func (s *shopService) Redact(ctx context.Context, req *dto.RedactWebhookRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	shop, err := uow.ShopRepository().FindOneUnscoped(ctx, specification.ByDomain{Domain: req.ShopDomain})
	if err != nil {
		return err
	}
	if shop == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Children first, respecting foreign keys.
	if err := uow.VariantResultRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.CompositeRunRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.RenderJobRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.RoomSessionRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.ProductAssetRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.MonitorEventRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.MonitorArtifactRepository().DeleteAllByShopIdUnscoped(ctx, shop.Id); err != nil {
		return err
	}
	if err := uow.ShopRepository().HardDelete(ctx, shop.Id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("shop", "shop data redacted", map[string]interface{}{
		"domain": req.ShopDomain,
	})
	return nil
}
