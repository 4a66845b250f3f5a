package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miyakawa-dev/salonflow/internal/instagram"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/repository"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostPublished    = errors.New("published posts cannot be changed")
	ErrPostNotPublished = errors.New("post has not been published")
)

type PostService interface {
	Create(ctx context.Context, userID, shopID int64, req transfer.PostCreateRequest) (*models.Post, error)
	List(ctx context.Context, userID, shopID int64, status string, limit, offset int) ([]*models.Post, int64, error)
	Get(ctx context.Context, userID, shopID, postID int64) (*models.Post, error)
	Update(ctx context.Context, userID, shopID, postID int64, req transfer.PostUpdateRequest) (*models.Post, error)
	Delete(ctx context.Context, userID, shopID, postID int64) error
	Publish(ctx context.Context, userID, shopID, postID int64) (*models.Post, error)
	PublishScheduled(ctx context.Context, postID int64) error
	Stats(ctx context.Context, userID, shopID int64) (*transfer.PostStats, error)
	Insights(ctx context.Context, userID, shopID, postID int64) (*transfer.InsightsSnapshot, error)
	SyncEngagement(ctx context.Context, post *models.Post) error
}

type postService struct {
	shops repository.ShopRepository
	posts repository.PostRepository
	ig    InstagramService
}

func NewPostService(shops repository.ShopRepository, posts repository.PostRepository, ig InstagramService) PostService {
	return &postService{
		shops: shops,
		posts: posts,
		ig:    ig,
	}
}

func (s *postService) ownedShop(ctx context.Context, userID, shopID int64) (*models.Shop, error) {
	shop, err := s.shops.GetByUserAndID(ctx, userID, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

func (s *postService) Create(ctx context.Context, userID, shopID int64, req transfer.PostCreateRequest) (*models.Post, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, err
	}

	if req.ImageURL == "" {
		return nil, errors.New("image_url is required")
	}

	status := models.PostStatusDraft
	post := &models.Post{
		ShopID:   shopID,
		ImageURL: req.ImageURL,
		Caption:  req.Caption,
		Hashtags: req.Hashtags,
		Status:   status,
	}
	if req.ScheduledAt != nil {
		post.Status = models.PostStatusScheduled
		post.ScheduledAt = nullTime(*req.ScheduledAt)
	}

	id, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

func (s *postService) List(ctx context.Context, userID, shopID int64, status string, limit, offset int) ([]*models.Post, int64, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.posts.ListByShopID(ctx, shopID, status, limit, offset)
}

func (s *postService) Get(ctx context.Context, userID, shopID, postID int64) (*models.Post, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByShopAndID(ctx, shopID, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, userID, shopID, postID int64, req transfer.PostUpdateRequest) (*models.Post, error) {
	post, err := s.Get(ctx, userID, shopID, postID)
	if err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusPublished {
		return nil, ErrPostPublished
	}

	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if req.Caption != nil {
		post.Caption = *req.Caption
	}
	if req.Hashtags != nil {
		post.Hashtags = req.Hashtags
	}
	if req.ScheduledAt != nil {
		post.ScheduledAt = nullTime(*req.ScheduledAt)
		if post.Status == models.PostStatusDraft {
			post.Status = models.PostStatusScheduled
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, postID)
}

func (s *postService) Delete(ctx context.Context, userID, shopID, postID int64) error {
	post, err := s.Get(ctx, userID, shopID, postID)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPublished {
		return ErrPostPublished
	}

	return s.posts.Remove(ctx, postID)
}

// Publish pushes the post to Instagram through the two-phase protocol.
// The remote media id is recorded on success; on failure the post is
// marked failed with the provider message so the UI can surface the
// violated constraint verbatim. Engagement sync afterwards is
// best-effort and never turns a successful publish into a failure.
func (s *postService) Publish(ctx context.Context, userID, shopID, postID int64) (*models.Post, error) {
	post, err := s.Get(ctx, userID, shopID, postID)
	if err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusPublished {
		return nil, errors.New("post is already published")
	}

	if err := s.publish(ctx, userID, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, postID)
}

// PublishScheduled is the queue-worker entry point. A post that was
// unscheduled or already published after the task was enqueued is
// skipped without error.
func (s *postService) PublishScheduled(ctx context.Context, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != models.PostStatusScheduled {
		return nil
	}

	shop, err := s.shops.GetByID(ctx, post.ShopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}

	return s.publish(ctx, shop.UserID, post)
}

func (s *postService) publish(ctx context.Context, userID int64, post *models.Post) error {
	mediaID, err := s.ig.Publish(ctx, userID, instagram.PublishRequest{
		ImageURL: post.ImageURL,
		Caption:  buildCaption(post.Caption, post.Hashtags),
	})
	if err != nil {
		if dbErr := s.posts.SetFailed(ctx, post.ID, err.Error()); dbErr != nil {
			slog.Info(dbErr.Error())
		}
		return fmt.Errorf("failed to publish post %d: %w", post.ID, err)
	}

	publishedAt := time.Now()
	if err := s.posts.SetPublished(ctx, post.ID, mediaID, publishedAt); err != nil {
		return err
	}

	s.syncEngagement(ctx, userID, post.ID, mediaID)
	return nil
}

func (s *postService) Stats(ctx context.Context, userID, shopID int64) (*transfer.PostStats, error) {
	if _, err := s.ownedShop(ctx, userID, shopID); err != nil {
		return nil, err
	}
	return s.posts.StatsByShopID(ctx, shopID)
}

// Insights fetches live metrics for a published post and refreshes the
// stored counters on the way through. Metrics may be empty when the
// provider declines the request; the snapshot is returned regardless.
func (s *postService) Insights(ctx context.Context, userID, shopID, postID int64) (*transfer.InsightsSnapshot, error) {
	post, err := s.Get(ctx, userID, shopID, postID)
	if err != nil {
		return nil, err
	}
	if !post.InstagramPostID.Valid {
		return nil, ErrPostNotPublished
	}

	mediaID := post.InstagramPostID.String
	metrics := s.ig.SyncInsights(ctx, userID, mediaID)
	if len(metrics) > 0 {
		err := s.posts.UpdateEngagement(ctx, post.ID,
			metrics["likes"], metrics["comments"], metrics["reach"], time.Now())
		if err != nil {
			slog.Info(err.Error())
		}
	}

	return &transfer.InsightsSnapshot{MediaID: mediaID, Metrics: metrics}, nil
}

// SyncEngagement refreshes insight counters for one published post.
// Used by the cron sweep.
func (s *postService) SyncEngagement(ctx context.Context, post *models.Post) error {
	if !post.InstagramPostID.Valid {
		return ErrPostNotPublished
	}

	shop, err := s.shops.GetByID(ctx, post.ShopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}

	s.syncEngagement(ctx, shop.UserID, post.ID, post.InstagramPostID.String)
	return nil
}

func (s *postService) syncEngagement(ctx context.Context, userID, postID int64, mediaID string) {
	metrics := s.ig.SyncInsights(ctx, userID, mediaID)
	if len(metrics) == 0 {
		return
	}

	err := s.posts.UpdateEngagement(ctx, postID,
		metrics["likes"], metrics["comments"], metrics["reach"], time.Now())
	if err != nil {
		slog.Info(err.Error())
	}
}

// buildCaption appends hashtags to the caption body the way they appear
// on the published post. Tags may be stored with or without a leading #.
func buildCaption(caption string, hashtags []string) string {
	if len(hashtags) == 0 {
		return caption
	}

	tags := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}

	if len(tags) == 0 {
		return caption
	}
	if caption == "" {
		return strings.Join(tags, " ")
	}
	return caption + "\n\n" + strings.Join(tags, " ")
}
