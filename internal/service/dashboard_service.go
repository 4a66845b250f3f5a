package service

import (
	"context"
	"time"

	"github.com/miyakawa-dev/salonflow/internal/repository"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

type DashboardService interface {
	Summary(ctx context.Context, userID, shopID int64) (*transfer.DashboardSummary, error)
}

type dashboardService struct {
	shops   repository.ShopRepository
	posts   repository.PostRepository
	reviews repository.ReviewRepository
	ig      InstagramService
}

func NewDashboardService(
	shops repository.ShopRepository,
	posts repository.PostRepository,
	reviews repository.ReviewRepository,
	ig InstagramService) DashboardService {
	return &dashboardService{
		shops:   shops,
		posts:   posts,
		reviews: reviews,
		ig:      ig,
	}
}

func (s *dashboardService) Summary(ctx context.Context, userID, shopID int64) (*transfer.DashboardSummary, error) {
	shop, err := s.shops.GetByUserAndID(ctx, userID, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	postStats, err := s.posts.StatsByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	reviewStats, err := s.reviews.StatsByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	summary := &transfer.DashboardSummary{
		Posts:   *postStats,
		Reviews: *reviewStats,
	}

	// Engagement totals come from the synced counters, not live calls.
	totals, err := s.posts.EngagementTotalsByShopID(ctx, shopID, time.Now().AddDate(0, -3, 0))
	if err != nil {
		return nil, err
	}
	summary.TotalLikes = totals.Likes
	summary.TotalComments = totals.Comments
	summary.TotalReach = totals.Reach

	status, err := s.ig.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch {
	case status.Connected:
		summary.InstagramState = "connected"
	case status.Expired:
		summary.InstagramState = "expired"
	default:
		summary.InstagramState = "unconnected"
	}

	return summary, nil
}
