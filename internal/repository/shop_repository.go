package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/miyakawa-dev/salonflow/internal/models"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Shop, error)
	GetByUserAndID(ctx context.Context, userID, shopID int64) (*models.Shop, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	Remove(ctx context.Context, id int64) error
}

type shopRepository struct {
	db *sql.DB
}

func NewShopRepository(db *sql.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, shop *models.Shop) (int64, error) {
	query := `
		INSERT INTO shops(user_id, name, address, phone, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, shop.UserID, shop.Name, shop.Address, shop.Phone, shop.Description).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *shopRepository) GetByID(ctx context.Context, id int64) (*models.Shop, error) {
	query := `
		SELECT id, user_id, name, address, phone, description, created_at, updated_at
		FROM shops WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *shopRepository) GetByUserAndID(ctx context.Context, userID, shopID int64) (*models.Shop, error) {
	query := `
		SELECT id, user_id, name, address, phone, description, created_at, updated_at
		FROM shops WHERE id = $1 AND user_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, shopID, userID))
}

func (r *shopRepository) scanOne(row *sql.Row) (*models.Shop, error) {
	var s models.Shop
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Address, &s.Phone, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &s, nil
}

func (r *shopRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Shop, error) {
	query := `
		SELECT id, user_id, name, address, phone, description, created_at, updated_at
		FROM shops WHERE user_id = $1 ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var shops []*models.Shop
	for rows.Next() {
		var s models.Shop
		err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Address, &s.Phone, &s.Description, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		shops = append(shops, &s)
	}
	return shops, rows.Err()
}

func (r *shopRepository) Update(ctx context.Context, shop *models.Shop) error {
	query := `
		UPDATE shops
		SET name = $1, address = $2, phone = $3, description = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, shop.Name, shop.Address, shop.Phone, shop.Description, time.Now(), shop.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *shopRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM shops WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
