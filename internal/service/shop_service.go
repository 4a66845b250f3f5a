package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/repository"
)

var ErrShopNotFound = errors.New("shop not found")

type ShopService interface {
	Create(ctx context.Context, userID int64, shop *models.Shop) (*models.Shop, error)
	Get(ctx context.Context, userID, shopID int64) (*models.Shop, error)
	List(ctx context.Context, userID int64) ([]*models.Shop, error)
	Update(ctx context.Context, userID int64, shop *models.Shop) (*models.Shop, error)
	Delete(ctx context.Context, userID, shopID int64) error
}

type shopService struct {
	shops repository.ShopRepository
}

func NewShopService(shops repository.ShopRepository) ShopService {
	return &shopService{shops: shops}
}

func (s *shopService) Create(ctx context.Context, userID int64, shop *models.Shop) (*models.Shop, error) {
	if shop.Name == "" {
		return nil, errors.New("shop name is required")
	}

	shop.UserID = userID
	id, err := s.shops.Create(ctx, shop)
	if err != nil {
		return nil, err
	}

	return s.shops.GetByID(ctx, id)
}

func (s *shopService) Get(ctx context.Context, userID, shopID int64) (*models.Shop, error) {
	shop, err := s.shops.GetByUserAndID(ctx, userID, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

func (s *shopService) List(ctx context.Context, userID int64) ([]*models.Shop, error) {
	return s.shops.ListByUserID(ctx, userID)
}

func (s *shopService) Update(ctx context.Context, userID int64, shop *models.Shop) (*models.Shop, error) {
	existing, err := s.Get(ctx, userID, shop.ID)
	if err != nil {
		return nil, err
	}

	if shop.Name != "" {
		existing.Name = shop.Name
	}
	existing.Address = shop.Address
	existing.Phone = shop.Phone
	existing.Description = shop.Description

	if err := s.shops.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *shopService) Delete(ctx context.Context, userID, shopID int64) error {
	if _, err := s.Get(ctx, userID, shopID); err != nil {
		return err
	}

	if err := s.shops.Remove(ctx, shopID); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
