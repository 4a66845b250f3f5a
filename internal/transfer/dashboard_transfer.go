package transfer

type EngagementTotals struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Reach    int64 `json:"reach"`
}

type DashboardSummary struct {
	Posts          PostStats   `json:"posts"`
	Reviews        ReviewStats `json:"reviews"`
	TotalLikes     int64       `json:"total_likes"`
	TotalComments  int64       `json:"total_comments"`
	TotalReach     int64       `json:"total_reach"`
	InstagramState string      `json:"instagram_state"`
}
