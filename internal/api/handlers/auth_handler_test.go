package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/miyakawa-dev/salonflow/configs"
)

type fakeAuthService struct {
	userID int64
	err    error
}

func (f *fakeAuthService) LoginURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeAuthService) LoginCallback(context.Context, string) (int64, error) {
	return f.userID, f.err
}

// The session cookie crosses sites between the API and the frontend,
// so SameSite=None must be paired with Secure or browsers drop it.
func TestLoginCallbackSetsCrossSiteCookie(t *testing.T) {
	cfg := config.Config{
		SecretKey:   "0123456789abcdef0123456789abcdef",
		CookieName:  "salonflow_session",
		FrontendURL: "http://localhost:5173",
	}
	h := NewAuthHandler(cfg, &fakeAuthService{userID: 7})

	app := fiber.New()
	app.Get("/login/callback", h.LoginCallbackHandler)

	req := httptest.NewRequest(http.MethodGet, "/login/callback?code=abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, cfg.FrontendURL, resp.Header.Get("Location"))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cfg.CookieName {
			session = c
		}
	}
	require.NotNil(t, session, "session cookie not set")
	assert.NotEmpty(t, session.Value)
	assert.True(t, session.HttpOnly)
	assert.True(t, session.Secure)
	assert.Equal(t, http.SameSiteNoneMode, session.SameSite)
}
