package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) (int64, error)
	GetByShopAndID(ctx context.Context, shopID, reviewID int64) (*models.Review, error)
	ListByShopID(ctx context.Context, shopID int64, status string, limit, offset int) ([]*models.Review, int64, error)
	SetReply(ctx context.Context, id int64, reply string, repliedAt time.Time) error
	StatsByShopID(ctx context.Context, shopID int64) (*transfer.ReviewStats, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) (int64, error) {
	query := `
		INSERT INTO reviews(shop_id, author_name, rating, content, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, review.ShopID, review.AuthorName, review.Rating,
		review.Content, models.ReviewStatusPending).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *reviewRepository) GetByShopAndID(ctx context.Context, shopID, reviewID int64) (*models.Review, error) {
	query := `
		SELECT id, shop_id, author_name, rating, content, reply, replied_at, status, created_at, updated_at
		FROM reviews WHERE id = $1 AND shop_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, reviewID, shopID)

	var rv models.Review
	err := row.Scan(&rv.ID, &rv.ShopID, &rv.AuthorName, &rv.Rating, &rv.Content,
		&rv.Reply, &rv.RepliedAt, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) ListByShopID(ctx context.Context, shopID int64, status string, limit, offset int) ([]*models.Review, int64, error) {
	countQuery := `SELECT COUNT(*) FROM reviews WHERE shop_id = $1 AND ($2 = '' OR status = $2)`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, shopID, status).Scan(&total); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	query := `
		SELECT id, shop_id, author_name, rating, content, reply, replied_at, status, created_at, updated_at
		FROM reviews
		WHERE shop_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, shopID, status, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var rv models.Review
		err := rows.Scan(&rv.ID, &rv.ShopID, &rv.AuthorName, &rv.Rating, &rv.Content,
			&rv.Reply, &rv.RepliedAt, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		reviews = append(reviews, &rv)
	}
	return reviews, total, rows.Err()
}

func (r *reviewRepository) SetReply(ctx context.Context, id int64, reply string, repliedAt time.Time) error {
	query := `
		UPDATE reviews
		SET reply = $1, replied_at = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, reply, repliedAt, models.ReviewStatusReplied, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *reviewRepository) StatsByShopID(ctx context.Context, shopID int64) (*transfer.ReviewStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'replied'),
			COALESCE(AVG(rating), 0)
		FROM reviews WHERE shop_id = $1
	`

	var stats transfer.ReviewStats
	err := r.db.QueryRowContext(ctx, query, shopID).Scan(&stats.TotalReviews,
		&stats.PendingCount, &stats.RepliedCount, &stats.AverageRating)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &stats, nil
}
