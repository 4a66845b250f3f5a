package instagram

import (
	"context"
	"net/url"
)

// PublishableAccount is the Instagram business account linked to one of
// the principal's Facebook pages. PageToken is the page-scoped token;
// publish calls are only authorized with it, not with the user token.
type PublishableAccount struct {
	ID                string
	Username          string
	Name              string
	ProfilePictureURL string
	PageID            string
	PageToken         string
}

// AccountInfo is the live display info for a connected business account.
type AccountInfo struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type pageList struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type pageDetail struct {
	InstagramBusinessAccount *AccountInfo `json:"instagram_business_account"`
}

// ResolvePublishableAccount walks the principal's pages in provider
// enumeration order and returns the first one with a linked Instagram
// business account. When several pages are linked the first wins; the
// provider exposes no tie-break rule.
//
// A valid token with no linked account anywhere yields KindAccountNotFound,
// which is terminal for this OAuth attempt and distinct from auth or
// network failures.
func (c *Client) ResolvePublishableAccount(ctx context.Context, userToken string) (*PublishableAccount, error) {
	params := url.Values{}
	params.Set("access_token", userToken)

	var pages pageList
	if err := c.get(ctx, "list_pages", KindOAuth, "/me/accounts", params, &pages); err != nil {
		return nil, err
	}

	for _, page := range pages.Data {
		detailParams := url.Values{}
		detailParams.Set("fields", "instagram_business_account{id,username,name,profile_picture_url}")
		detailParams.Set("access_token", page.AccessToken)

		var detail pageDetail
		if err := c.get(ctx, "page_detail", KindOAuth, "/"+page.ID, detailParams, &detail); err != nil {
			return nil, err
		}

		if detail.InstagramBusinessAccount != nil {
			return &PublishableAccount{
				ID:                detail.InstagramBusinessAccount.ID,
				Username:          detail.InstagramBusinessAccount.Username,
				Name:              detail.InstagramBusinessAccount.Name,
				ProfilePictureURL: detail.InstagramBusinessAccount.ProfilePictureURL,
				PageID:            page.ID,
				PageToken:         page.AccessToken,
			}, nil
		}
	}

	return nil, &Error{
		Kind:    KindAccountNotFound,
		Op:      "resolve_account",
		Message: "no instagram business account linked to any page",
	}
}

// GetAccountInfo fetches display info for a business account with the
// page-scoped token. Used to surface upstream revocation: a stale local
// row fails here and reports as disconnected.
func (c *Client) GetAccountInfo(ctx context.Context, accountID, accessToken string) (*AccountInfo, error) {
	params := url.Values{}
	params.Set("fields", "username,name,profile_picture_url")
	params.Set("access_token", accessToken)

	var info AccountInfo
	if err := c.get(ctx, "account_info", KindOAuth, "/"+accountID, params, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		info.ID = accountID
	}
	return &info, nil
}
