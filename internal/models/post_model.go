package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID                 int64          `db:"id" json:"id"`
	ShopID             int64          `db:"shop_id" json:"shop_id"`
	InstagramPostID    sql.NullString `db:"instagram_post_id" json:"instagram_post_id"`
	Status             string         `db:"status" json:"status"`
	ImageURL           string         `db:"image_url" json:"image_url"`
	Caption            string         `db:"caption" json:"caption"`
	Hashtags           pq.StringArray `db:"hashtags" json:"hashtags"`
	ScheduledAt        sql.NullTime   `db:"scheduled_at" json:"scheduled_at"`
	PublishedAt        sql.NullTime   `db:"published_at" json:"published_at"`
	LikesCount         int64          `db:"likes_count" json:"likes_count"`
	CommentsCount      int64          `db:"comments_count" json:"comments_count"`
	ReachCount         int64          `db:"reach_count" json:"reach_count"`
	EngagementSyncedAt sql.NullTime   `db:"engagement_synced_at" json:"engagement_synced_at"`
	ErrorMessage       sql.NullString `db:"error_message" json:"error_message"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)
