package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/miyakawa-dev/salonflow/configs"
	"github.com/miyakawa-dev/salonflow/internal/instagram"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type fakeSocialAccountRepo struct {
	rows    map[string]*models.SocialAccount
	nextID  int64
	upserts int
}

func newFakeSocialAccountRepo() *fakeSocialAccountRepo {
	return &fakeSocialAccountRepo{rows: map[string]*models.SocialAccount{}}
}

func (r *fakeSocialAccountRepo) key(userID int64, provider string) string {
	return fmt.Sprintf("%d:%s", userID, provider)
}

func (r *fakeSocialAccountRepo) Upsert(_ context.Context, sa *models.SocialAccount) (int64, error) {
	r.upserts++
	k := r.key(sa.UserID, sa.Provider)
	if existing, ok := r.rows[k]; ok {
		sa.ID = existing.ID
	} else {
		r.nextID++
		sa.ID = r.nextID
	}
	copied := *sa
	r.rows[k] = &copied
	return sa.ID, nil
}

func (r *fakeSocialAccountRepo) GetByUserAndProvider(_ context.Context, userID int64, provider string) (*models.SocialAccount, error) {
	sa, ok := r.rows[r.key(userID, provider)]
	if !ok {
		return nil, nil
	}
	copied := *sa
	return &copied, nil
}

func (r *fakeSocialAccountRepo) Delete(_ context.Context, userID int64, provider string) error {
	delete(r.rows, r.key(userID, provider))
	return nil
}

type graphFixture struct {
	srv      *httptest.Server
	requests []string
}

// newGraphFixture serves a happy-path Graph API: code "abc" exchanges to
// "st1", upgrades to "lt1" (60 days), and one page carries business
// account acct_42.
func newGraphFixture(t *testing.T) *graphFixture {
	t.Helper()
	f := &graphFixture{}

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/oauth/access_token":
			if r.URL.Query().Get("grant_type") == "fb_exchange_token" {
				require.Equal(t, "st1", r.URL.Query().Get("fb_exchange_token"))
				fmt.Fprint(w, `{"access_token":"lt1","token_type":"bearer","expires_in":5184000}`)
				return
			}
			require.Equal(t, "abc", r.URL.Query().Get("code"))
			fmt.Fprint(w, `{"access_token":"st1","token_type":"bearer","expires_in":5183944}`)
		case "/me/accounts":
			require.Equal(t, "lt1", r.URL.Query().Get("access_token"))
			fmt.Fprint(w, `{"data":[{"id":"page_1","name":"Harbor","access_token":"pt1"}]}`)
		case "/page_1":
			require.Equal(t, "pt1", r.URL.Query().Get("access_token"))
			fmt.Fprint(w, `{"instagram_business_account":{"id":"acct_42","username":"harbor.salon","name":"Harbor Salon"}}`)
		case "/acct_42":
			fmt.Fprint(w, `{"id":"acct_42","username":"harbor.salon","name":"Harbor Salon"}`)
		case "/acct_42/media":
			fmt.Fprint(w, `{"id":"creation_9"}`)
		case "/acct_42/media_publish":
			fmt.Fprint(w, `{"id":"media_77"}`)
		case "/media_77/insights":
			fmt.Fprint(w, `{"data":[{"name":"reach","values":[{"value":100}]}]}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestInstagramService(t *testing.T, repo *fakeSocialAccountRepo, baseURL string, now time.Time) *instagramService {
	t.Helper()

	cfg := config.Config{
		InstagramAppID:     "app-id",
		InstagramAppSecret: "app-secret",
		InstagramBaseURL:   baseURL,
		BackendURL:         "https://api.example.com",
		SecretKey:          testSecretKey,
	}

	svc := NewInstagramService(cfg, repo).(*instagramService)
	svc.now = func() time.Time { return now }
	t.Cleanup(svc.Close)
	return svc
}

func TestConnectLinksAccount(t *testing.T) {
	fixture := newGraphFixture(t)
	repo := newFakeSocialAccountRepo()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestInstagramService(t, repo, fixture.srv.URL, now)

	err := svc.Connect(context.Background(), 7, "abc")
	require.NoError(t, err)

	row, err := repo.GetByUserAndProvider(context.Background(), 7, models.ProviderInstagram)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "acct_42", row.AccountID)
	assert.Equal(t, "harbor.salon", row.Username)

	// Stored token is the encrypted page token, not the user token.
	plain, err := utils.Decrypt(row.AccessToken, []byte(testSecretKey))
	require.NoError(t, err)
	assert.Equal(t, "pt1", plain)

	require.True(t, row.TokenExpiresAt.Valid)
	assert.Equal(t, now.Add(5184000*time.Second), row.TokenExpiresAt.Time.UTC())
}

func TestConnectRelinkOverwrites(t *testing.T) {
	fixture := newGraphFixture(t)
	repo := newFakeSocialAccountRepo()
	now := time.Now()
	svc := newTestInstagramService(t, repo, fixture.srv.URL, now)

	require.NoError(t, svc.Connect(context.Background(), 7, "abc"))
	first, _ := repo.GetByUserAndProvider(context.Background(), 7, models.ProviderInstagram)

	require.NoError(t, svc.Connect(context.Background(), 7, "abc"))
	second, _ := repo.GetByUserAndProvider(context.Background(), 7, models.ProviderInstagram)

	assert.Equal(t, first.ID, second.ID, "re-linking replaces the row, it does not add one")
	assert.Equal(t, 2, repo.upserts)
	assert.Len(t, repo.rows, 1)
}

func TestConnectNoBusinessAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/access_token":
			fmt.Fprint(w, `{"access_token":"tok","expires_in":5184000}`)
		case "/me/accounts":
			fmt.Fprint(w, `{"data":[{"id":"page_1","access_token":"pt1"}]}`)
		default:
			fmt.Fprint(w, `{"id":"page_1"}`)
		}
	}))
	defer srv.Close()

	repo := newFakeSocialAccountRepo()
	svc := newTestInstagramService(t, repo, srv.URL, time.Now())

	err := svc.Connect(context.Background(), 7, "abc")
	require.Error(t, err)
	assert.True(t, instagram.IsKind(err, instagram.KindAccountNotFound))

	// A failed connect leaves no partial state behind.
	row, _ := repo.GetByUserAndProvider(context.Background(), 7, models.ProviderInstagram)
	assert.Nil(t, row)
}

func TestStatusUnconnected(t *testing.T) {
	svc := newTestInstagramService(t, newFakeSocialAccountRepo(), "http://127.0.0.1:1", time.Now())

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.False(t, status.Expired)
}

func TestStatusExpiryBoundary(t *testing.T) {
	expiresAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"just before expiry", expiresAt.Add(-time.Second), false},
		{"exactly at expiry", expiresAt, true},
		{"just after expiry", expiresAt.Add(time.Second), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newGraphFixture(t)
			repo := newFakeSocialAccountRepo()
			svc := newTestInstagramService(t, repo, fixture.srv.URL, tc.now)

			encrypted, err := utils.Encrypt([]byte("pt1"), []byte(testSecretKey))
			require.NoError(t, err)
			_, err = repo.Upsert(context.Background(), &models.SocialAccount{
				UserID:         7,
				Provider:       models.ProviderInstagram,
				AccountID:      "acct_42",
				AccessToken:    encrypted,
				TokenExpiresAt: nullTime(expiresAt),
			})
			require.NoError(t, err)

			status, err := svc.Status(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, !tc.expired, status.Connected)
			assert.Equal(t, tc.expired, status.Expired)
		})
	}
}

func TestPublishRequiresConnection(t *testing.T) {
	svc := newTestInstagramService(t, newFakeSocialAccountRepo(), "http://127.0.0.1:1", time.Now())

	_, err := svc.Publish(context.Background(), 7, instagram.PublishRequest{
		ImageURL: "https://cdn.example.com/cut.jpg",
	})
	require.Error(t, err)
	assert.True(t, instagram.IsKind(err, instagram.KindReconnectRequired))
}

func TestPublishExpiredTokenMakesNoProviderCall(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	repo := newFakeSocialAccountRepo()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestInstagramService(t, repo, srv.URL, now)

	encrypted, err := utils.Encrypt([]byte("pt1"), []byte(testSecretKey))
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), &models.SocialAccount{
		UserID:         7,
		Provider:       models.ProviderInstagram,
		AccountID:      "acct_42",
		AccessToken:    encrypted,
		TokenExpiresAt: nullTime(now.Add(-time.Hour)),
	})
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), 7, instagram.PublishRequest{
		ImageURL: "https://cdn.example.com/cut.jpg",
	})
	require.Error(t, err)
	assert.True(t, instagram.IsKind(err, instagram.KindReconnectRequired))
	assert.Zero(t, calls, "an expired token must fail before any provider call")
}

func TestPublishSucceeds(t *testing.T) {
	fixture := newGraphFixture(t)
	repo := newFakeSocialAccountRepo()
	now := time.Now()
	svc := newTestInstagramService(t, repo, fixture.srv.URL, now)

	require.NoError(t, svc.Connect(context.Background(), 7, "abc"))

	mediaID, err := svc.Publish(context.Background(), 7, instagram.PublishRequest{
		ImageURL: "https://cdn.example.com/cut.jpg",
		Caption:  "Fresh summer bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "media_77", mediaID)
}

func TestSyncInsightsNeverFails(t *testing.T) {
	// Unconnected user.
	svc := newTestInstagramService(t, newFakeSocialAccountRepo(), "http://127.0.0.1:1", time.Now())
	snapshot := svc.SyncInsights(context.Background(), 7, "media_77")
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)

	// Connected user with an unreachable provider.
	repo := newFakeSocialAccountRepo()
	svc = newTestInstagramService(t, repo, "http://127.0.0.1:1", time.Now())
	encrypted, err := utils.Encrypt([]byte("pt1"), []byte(testSecretKey))
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), &models.SocialAccount{
		UserID:      7,
		Provider:    models.ProviderInstagram,
		AccountID:   "acct_42",
		AccessToken: encrypted,
	})
	require.NoError(t, err)

	snapshot = svc.SyncInsights(context.Background(), 7, "media_77")
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}

func TestDisconnect(t *testing.T) {
	fixture := newGraphFixture(t)
	repo := newFakeSocialAccountRepo()
	svc := newTestInstagramService(t, repo, fixture.srv.URL, time.Now())

	require.NoError(t, svc.Connect(context.Background(), 7, "abc"))
	require.NoError(t, svc.Disconnect(context.Background(), 7))

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, status.Connected)

	// Disconnecting an unconnected user is a no-op.
	require.NoError(t, svc.Disconnect(context.Background(), 7))
}
