package models

import (
	"database/sql"
	"time"
)

type Review struct {
	ID         int64          `db:"id" json:"id"`
	ShopID     int64          `db:"shop_id" json:"shop_id"`
	AuthorName string         `db:"author_name" json:"author_name"`
	Rating     int            `db:"rating" json:"rating"`
	Content    string         `db:"content" json:"content"`
	Reply      sql.NullString `db:"reply" json:"reply"`
	RepliedAt  sql.NullTime   `db:"replied_at" json:"replied_at"`
	Status     string         `db:"status" json:"status"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	ReviewStatusPending = "pending"
	ReviewStatusReplied = "replied"
)
