package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

const postColumns = `id, shop_id, instagram_post_id, status, image_url, caption, hashtags,
	scheduled_at, published_at, likes_count, comments_count, reach_count,
	engagement_synced_at, error_message, created_at, updated_at`

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByShopAndID(ctx context.Context, shopID, postID int64) (*models.Post, error)
	ListByShopID(ctx context.Context, shopID int64, status string, limit, offset int) ([]*models.Post, int64, error)
	ListPublishedSince(ctx context.Context, since time.Time) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SetPublished(ctx context.Context, id int64, instagramPostID string, publishedAt time.Time) error
	SetFailed(ctx context.Context, id int64, errorMessage string) error
	UpdateEngagement(ctx context.Context, id int64, likes, comments, reach int64, syncedAt time.Time) error
	Remove(ctx context.Context, id int64) error
	StatsByShopID(ctx context.Context, shopID int64) (*transfer.PostStats, error)
	EngagementTotalsByShopID(ctx context.Context, shopID int64, since time.Time) (*transfer.EngagementTotals, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts(shop_id, status, image_url, caption, hashtags, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.ShopID,
		post.Status,
		post.ImageURL,
		post.Caption,
		pq.Array(post.Hashtags),
		post.ScheduledAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func scanPost(scanner interface{ Scan(dest ...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(&p.ID, &p.ShopID, &p.InstagramPostID, &p.Status, &p.ImageURL,
		&p.Caption, &p.Hashtags, &p.ScheduledAt, &p.PublishedAt, &p.LikesCount,
		&p.CommentsCount, &p.ReachCount, &p.EngagementSyncedAt, &p.ErrorMessage,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetByShopAndID(ctx context.Context, shopID, postID int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND shop_id = $2`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, postID, shopID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) ListByShopID(ctx context.Context, shopID int64, status string, limit, offset int) ([]*models.Post, int64, error) {
	countQuery := `SELECT COUNT(*) FROM posts WHERE shop_id = $1 AND ($2 = '' OR status = $2)`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, shopID, status).Scan(&total); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE shop_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, shopID, status, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

func (r *postRepository) ListPublishedSince(ctx context.Context, since time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE status = $1 AND published_at >= $2 AND instagram_post_id IS NOT NULL
		ORDER BY published_at DESC`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPublished, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET image_url = $1, caption = $2, hashtags = $3, scheduled_at = $4,
			status = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query, post.ImageURL, post.Caption, pq.Array(post.Hashtags),
		post.ScheduledAt, post.Status, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetPublished(ctx context.Context, id int64, instagramPostID string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1, instagram_post_id = $2, published_at = $3,
			error_message = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, instagramPostID, publishedAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE posts
		SET status = $1, error_message = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateEngagement(ctx context.Context, id int64, likes, comments, reach int64, syncedAt time.Time) error {
	query := `
		UPDATE posts
		SET likes_count = $1, comments_count = $2, reach_count = $3,
			engagement_synced_at = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, likes, comments, reach, syncedAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) StatsByShopID(ctx context.Context, shopID int64) (*transfer.PostStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM posts WHERE shop_id = $1
	`

	var stats transfer.PostStats
	err := r.db.QueryRowContext(ctx, query, shopID).Scan(&stats.TotalPosts, &stats.DraftCount,
		&stats.ScheduledCount, &stats.PublishedCount, &stats.FailedCount)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &stats, nil
}

func (r *postRepository) EngagementTotalsByShopID(ctx context.Context, shopID int64, since time.Time) (*transfer.EngagementTotals, error) {
	query := `
		SELECT COALESCE(SUM(likes_count), 0), COALESCE(SUM(comments_count), 0), COALESCE(SUM(reach_count), 0)
		FROM posts
		WHERE shop_id = $1 AND status = $2 AND published_at >= $3
	`

	var totals transfer.EngagementTotals
	err := r.db.QueryRowContext(ctx, query, shopID, models.PostStatusPublished, since).
		Scan(&totals.Likes, &totals.Comments, &totals.Reach)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &totals, nil
}
