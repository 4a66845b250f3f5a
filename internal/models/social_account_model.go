package models

import (
	"database/sql"
	"time"
)

const ProviderInstagram = "instagram"

// SocialAccount holds one provider connection per (user, provider) pair.
// AccessToken is the AES-GCM-encrypted page-scoped token; AccountID is
// the resolved Instagram business account, not the login identity.
type SocialAccount struct {
	ID             int64        `db:"id" json:"id"`
	UserID         int64        `db:"user_id" json:"user_id"`
	Provider       string       `db:"provider" json:"provider"`
	AccountID      string       `db:"provider_account_id" json:"provider_account_id"`
	Username       string       `db:"account_username" json:"account_username"`
	AccountName    string       `db:"account_name" json:"account_name"`
	ProfilePicture string       `db:"profile_picture_url" json:"profile_picture"`
	AccessToken    string       `db:"access_token" json:"-"`
	TokenExpiresAt sql.NullTime `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}
