package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/miyakawa-dev/salonflow/configs"
	"github.com/miyakawa-dev/salonflow/internal/instagram"
	"github.com/miyakawa-dev/salonflow/internal/models"
	"github.com/miyakawa-dev/salonflow/internal/repository"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
	"github.com/miyakawa-dev/salonflow/pkg/utils"
)

// InstagramService owns the connection lifecycle for the publishing
// integration: Unconnected -> Connected -> Expired, with Expired only
// recoverable through a fresh OAuth round trip. The long-lived token
// has no refresh grant, so there is no silent renewal anywhere.
type InstagramService interface {
	AuthURL(state string) string
	Connect(ctx context.Context, userID int64, code string) error
	Status(ctx context.Context, userID int64) (*transfer.ConnectionStatus, error)
	Disconnect(ctx context.Context, userID int64) error
	Publish(ctx context.Context, userID int64, req instagram.PublishRequest) (string, error)
	SyncInsights(ctx context.Context, userID int64, mediaID string) map[string]int64
	Close()
}

type instagramService struct {
	cfg    config.Config
	client *instagram.Client
	sa     repository.SocialAccountRepository
	now    func() time.Time
}

func NewInstagramService(cfg config.Config, sa repository.SocialAccountRepository) InstagramService {
	client := instagram.NewClient(instagram.Config{
		AppID:     cfg.InstagramAppID,
		AppSecret: cfg.InstagramAppSecret,
		BaseURL:   cfg.InstagramBaseURL,
	})
	return &instagramService{
		cfg:    cfg,
		client: client,
		sa:     sa,
		now:    time.Now,
	}
}

func (s *instagramService) Close() {
	s.client.Close()
}

func (s *instagramService) redirectURI() string {
	return s.cfg.BackendURL + "/auth/instagram/callback"
}

func (s *instagramService) AuthURL(state string) string {
	return s.client.AuthURL(state, s.redirectURI())
}

// Connect runs the full linking flow: code -> short-lived token ->
// long-lived token -> business account discovery -> upsert. A failure at
// any step leaves no connection state; in particular a failed upgrade
// never persists a short-lived-only token. Re-linking an already
// connected user overwrites the existing row.
func (s *instagramService) Connect(ctx context.Context, userID int64, code string) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	if userID == 0 {
		err := errors.New("user not found")
		slog.Info(err.Error())
		return err
	}

	shortToken, err := s.client.ExchangeCode(ctx, code, s.redirectURI())
	if err != nil {
		return err
	}

	longToken, err := s.client.UpgradeToLongLived(ctx, shortToken.Token)
	if err != nil {
		return err
	}

	// Absolute expiry is fixed at the moment the relative expires_in
	// arrives, before any further network calls.
	expiresAt := s.now().Add(time.Duration(longToken.ExpiresIn) * time.Second)

	account, err := s.client.ResolvePublishableAccount(ctx, longToken.Token)
	if err != nil {
		return err
	}

	// Only the page-scoped token is authorized for publish calls, so
	// that is what gets stored.
	encryptedToken, err := utils.Encrypt([]byte(account.PageToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	_, err = s.sa.Upsert(ctx, &models.SocialAccount{
		UserID:         userID,
		Provider:       models.ProviderInstagram,
		AccountID:      account.ID,
		Username:       account.Username,
		AccountName:    account.Name,
		ProfilePicture: account.ProfilePictureURL,
		AccessToken:    encryptedToken,
		TokenExpiresAt: nullTime(expiresAt),
	})
	if err != nil {
		return fmt.Errorf("failed to save instagram connection: %w", err)
	}

	return nil
}

// Status reads the stored row and, when the token is still valid,
// fetches display info live rather than from the row so an account
// revoked upstream reports as disconnected even while the local row is
// stale.
func (s *instagramService) Status(ctx context.Context, userID int64) (*transfer.ConnectionStatus, error) {
	account, err := s.sa.GetByUserAndProvider(ctx, userID, models.ProviderInstagram)
	if err != nil {
		return nil, err
	}

	if account == nil {
		return &transfer.ConnectionStatus{Connected: false}, nil
	}

	if s.tokenExpired(account) {
		return &transfer.ConnectionStatus{
			Connected: false,
			Expired:   true,
			ExpiresAt: account.TokenExpiresAt.Time.Format(time.RFC3339),
		}, nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	info, err := s.client.GetAccountInfo(ctx, account.AccountID, accessToken)
	if err != nil {
		slog.Info("live account lookup failed, reporting disconnected", "user_id", userID, "error", err.Error())
		return &transfer.ConnectionStatus{Connected: false}, nil
	}

	status := &transfer.ConnectionStatus{
		Connected:      true,
		Username:       info.Username,
		AccountName:    info.Name,
		ProfilePicture: info.ProfilePictureURL,
	}
	if account.TokenExpiresAt.Valid {
		status.ExpiresAt = account.TokenExpiresAt.Time.Format(time.RFC3339)
	}
	return status, nil
}

func (s *instagramService) Disconnect(ctx context.Context, userID int64) error {
	return s.sa.Delete(ctx, userID, models.ProviderInstagram)
}

// Publish re-reads the connection on every call (a concurrent re-link
// may have replaced the token) and fails fast with reconnect_required
// when the row is absent or past expiry, without spending a provider
// call on a token known to be dead.
func (s *instagramService) Publish(ctx context.Context, userID int64, req instagram.PublishRequest) (string, error) {
	account, err := s.sa.GetByUserAndProvider(ctx, userID, models.ProviderInstagram)
	if err != nil {
		return "", err
	}

	if account == nil {
		return "", &instagram.Error{
			Kind:    instagram.KindReconnectRequired,
			Op:      "publish",
			Message: "instagram is not connected",
		}
	}

	if s.tokenExpired(account) {
		return "", &instagram.Error{
			Kind:    instagram.KindReconnectRequired,
			Op:      "publish",
			Message: "instagram token has expired, reconnect required",
		}
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	return s.client.Publish(ctx, account.AccountID, accessToken, req)
}

// SyncInsights is best-effort end to end: a missing or expired
// connection yields an empty snapshot just like a provider failure.
func (s *instagramService) SyncInsights(ctx context.Context, userID int64, mediaID string) map[string]int64 {
	empty := map[string]int64{}

	account, err := s.sa.GetByUserAndProvider(ctx, userID, models.ProviderInstagram)
	if err != nil || account == nil || s.tokenExpired(account) {
		return empty
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return empty
	}

	return s.client.FetchInsights(ctx, mediaID, accessToken)
}

// tokenExpired treats the boundary instant as expired: a token with
// expires_at == now is already dead. A null expiry only occurs in the
// short window before the long-lived exchange completes and is treated
// as non-expiring.
func (s *instagramService) tokenExpired(account *models.SocialAccount) bool {
	if !account.TokenExpiresAt.Valid {
		return false
	}
	return !s.now().Before(account.TokenExpiresAt.Time)
}
