package transfer

import "time"

type PostCreateRequest struct {
	ImageURL    string     `json:"image_url"`
	Caption     string     `json:"caption"`
	Hashtags    []string   `json:"hashtags"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type PostUpdateRequest struct {
	ImageURL    *string    `json:"image_url"`
	Caption     *string    `json:"caption"`
	Hashtags    []string   `json:"hashtags"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type PostStats struct {
	TotalPosts     int64 `json:"total_posts"`
	DraftCount     int64 `json:"draft_count"`
	ScheduledCount int64 `json:"scheduled_count"`
	PublishedCount int64 `json:"published_count"`
	FailedCount    int64 `json:"failed_count"`
}
