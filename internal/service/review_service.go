package service

import (
	"context"
	"errors"
	"time"

	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/repository"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewService interface {
	Create(ctx context.Context, userID, shopID int64, req transfer.ReviewCreateRequest) (*models.Review, error)
	List(ctx context.Context, userID, shopID int64, status string, limit, offset int) ([]*models.Review, int64, error)
	Get(ctx context.Context, userID, shopID, reviewID int64) (*models.Review, error)
	Reply(ctx context.Context, userID, shopID, reviewID int64, reply string) (*models.Review, error)
	SuggestReply(ctx context.Context, userID, shopID, reviewID int64) (string, error)
	Stats(ctx context.Context, userID, shopID int64) (*transfer.ReviewStats, error)
}

type reviewService struct {
	shops   repository.ShopRepository
	reviews repository.ReviewRepository
	ai      AIService
}

func NewReviewService(shops repository.ShopRepository, reviews repository.ReviewRepository, ai AIService) ReviewService {
	return &reviewService{
		shops:   shops,
		reviews: reviews,
		ai:      ai,
	}
}

func (s *reviewService) ownedShop(ctx context.Context, userID, shopID int64) (*models.Shop, error) {
	shop, err := s.shops.GetByUserAndID(ctx, userID, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

func (s *reviewService) Create(ctx context.Context, userID, shopID int64, req transfer.ReviewCreateRequest) (*models.Review, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, err
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}

	review := &models.Review{
		ShopID:     shopID,
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Content:    req.Content,
	}

	id, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	return s.reviews.GetByShopAndID(ctx, shopID, id)
}

func (s *reviewService) List(ctx context.Context, userID, shopID int64, status string, limit, offset int) ([]*models.Review, int64, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.reviews.ListByShopID(ctx, shopID, status, limit, offset)
}

func (s *reviewService) Get(ctx context.Context, userID, shopID, reviewID int64) (*models.Review, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByShopAndID(ctx, shopID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) Reply(ctx context.Context, userID, shopID, reviewID int64, reply string) (*models.Review, error) {
	review, err := s.Get(ctx, userID, shopID, reviewID)
	if err != nil {
		return nil, err
	}

	if reply == "" {
		return nil, errors.New("reply is empty")
	}

	if err := s.reviews.SetReply(ctx, review.ID, reply, time.Now()); err != nil {
		return nil, err
	}
	return s.reviews.GetByShopAndID(ctx, shopID, reviewID)
}

// SuggestReply drafts a response through the AI worker. The worker only
// suggests wording; nothing is persisted until the owner sends the
// reply themselves.
func (s *reviewService) SuggestReply(ctx context.Context, userID, shopID, reviewID int64) (string, error) {
	shop, err := s.ownedShop(ctx, userID, shopID)
	if err != nil {
		return "", err
	}

	review, err := s.reviews.GetByShopAndID(ctx, shopID, reviewID)
	if err != nil {
		return "", err
	}
	if review == nil {
		return "", ErrReviewNotFound
	}

	return s.ai.SuggestReviewReply(ctx, transfer.ReviewReplySuggestRequest{
		ShopName: shop.Name,
		Rating:   review.Rating,
		Content:  review.Content,
	})
}

func (s *reviewService) Stats(ctx context.Context, userID, shopID int64) (*transfer.ReviewStats, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, err
	}
	return s.reviews.StatsByShopID(ctx, shopID)
}
