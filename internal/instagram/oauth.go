package instagram

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// Instagram publishing goes through Facebook Login. These scopes cover
// page listing plus business-account content publishing.
var oauthScopes = []string{
	"instagram_basic",
	"instagram_content_publish",
	"pages_show_list",
	"pages_read_engagement",
	"business_management",
}

type ShortLivedToken struct {
	Token     string
	ExpiresIn int64
}

type LongLivedToken struct {
	Token     string
	ExpiresIn int64
}

// AuthURL builds the Facebook login dialog URL. The state value is
// round-tripped through the provider untouched.
func (c *Client) AuthURL(state, redirectURI string) string {
	conf := &oauth2.Config{
		ClientID:    c.cfg.AppID,
		RedirectURL: redirectURI,
		Scopes:      oauthScopes,
		Endpoint:    facebook.Endpoint,
	}
	return conf.AuthCodeURL(state)
}

// ExchangeCode trades a single-use authorization code for a short-lived
// token. The redirect URI must exactly match the one used to obtain the
// code or the provider rejects the exchange.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*ShortLivedToken, error) {
	params := url.Values{}
	params.Set("client_id", c.cfg.AppID)
	params.Set("client_secret", c.cfg.AppSecret)
	params.Set("redirect_uri", redirectURI)
	params.Set("code", code)

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.get(ctx, "exchange_code", KindOAuth, "/oauth/access_token", params, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &Error{Kind: KindOAuth, Op: "exchange_code", Message: "no access token in response"}
	}

	return &ShortLivedToken{Token: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}

// UpgradeToLongLived exchanges a short-lived token for a long-lived one
// (roughly 60 days). There is no refresh grant for the result; once it
// expires the whole OAuth round trip starts over.
//
// ExpiresIn is relative seconds. The caller must convert it to an
// absolute timestamp at the moment of receipt, not at persistence time.
func (c *Client) UpgradeToLongLived(ctx context.Context, shortLivedToken string) (*LongLivedToken, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.cfg.AppID)
	params.Set("client_secret", c.cfg.AppSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.get(ctx, "upgrade_token", KindOAuth, "/oauth/access_token", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}
	if result.AccessToken == "" {
		return nil, &Error{Kind: KindOAuth, Op: "upgrade_token", Message: "no access token in response"}
	}

	return &LongLivedToken{Token: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}
