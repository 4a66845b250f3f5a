package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/miyakawa-dev/salonflow/internal/models"
)

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error)
	GetByUserAndProvider(ctx context.Context, userID int64, provider string) (*models.SocialAccount, error)
	Delete(ctx context.Context, userID int64, provider string) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

// Upsert writes the connection row for (user_id, provider). Re-linking
// overwrites the token and account id in place; concurrent connects
// resolve last-writer-wins at the row level.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	query := `
		INSERT INTO social_accounts(
			user_id,
			provider,
			provider_account_id,
			account_username,
			account_name,
			profile_picture_url,
			access_token,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			provider_account_id = EXCLUDED.provider_account_id,
			account_username = EXCLUDED.account_username,
			account_name = EXCLUDED.account_name,
			profile_picture_url = EXCLUDED.profile_picture_url,
			access_token = EXCLUDED.access_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		sa.UserID,
		sa.Provider,
		sa.AccountID,
		sa.Username,
		sa.AccountName,
		sa.ProfilePicture,
		sa.AccessToken,
		sa.TokenExpiresAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByUserAndProvider(ctx context.Context, userID int64, provider string) (*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, provider, provider_account_id, account_username,
			account_name, profile_picture_url, access_token, token_expires_at,
			created_at, updated_at
		FROM social_accounts
		WHERE user_id = $1 AND provider = $2
	`
	row := r.db.QueryRowContext(ctx, query, userID, provider)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Provider, &sa.AccountID, &sa.Username,
		&sa.AccountName, &sa.ProfilePicture, &sa.AccessToken, &sa.TokenExpiresAt,
		&sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

// Delete removes the connection row. Deleting an absent row is not an
// error; disconnect is idempotent.
func (r *socialAccountRepository) Delete(ctx context.Context, userID int64, provider string) error {
	query := `DELETE FROM social_accounts WHERE user_id = $1 AND provider = $2`
	_, err := r.db.ExecContext(ctx, query, userID, provider)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
