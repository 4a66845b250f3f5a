package transfer

// ConnectionStatus is the API-facing view of a user's Instagram link.
// Expired distinguishes "reconnect" remediation from "link a business
// account" remediation on the frontend.
type ConnectionStatus struct {
	Connected      bool   `json:"connected"`
	Expired        bool   `json:"expired"`
	Username       string `json:"username,omitempty"`
	AccountName    string `json:"account_name,omitempty"`
	ProfilePicture string `json:"profile_picture_url,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
}

type InsightsSnapshot struct {
	MediaID string           `json:"media_id"`
	Metrics map[string]int64 `json:"metrics"`
}
