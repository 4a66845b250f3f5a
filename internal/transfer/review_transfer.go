package transfer

type ReviewCreateRequest struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Content    string `json:"content"`
}

type ReviewReplyRequest struct {
	Reply string `json:"reply"`
}

type ReviewStats struct {
	TotalReviews  int64   `json:"total_reviews"`
	PendingCount  int64   `json:"pending_count"`
	RepliedCount  int64   `json:"replied_count"`
	AverageRating float64 `json:"average_rating"`
}

// AI worker contracts. The worker itself is an external collaborator;
// only these request/response shapes are owned here.

type CaptionSuggestRequest struct {
	ShopName string   `json:"shop_name"`
	Keywords []string `json:"keywords"`
	Tone     string   `json:"tone"`
}

type CaptionSuggestResponse struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

type ReviewReplySuggestRequest struct {
	ShopName string `json:"shop_name"`
	Rating   int    `json:"rating"`
	Content  string `json:"content"`
}

type ReviewReplySuggestResponse struct {
	Reply string `json:"reply"`
}
