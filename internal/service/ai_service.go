package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/miyakawa-dev/salonflow/configs"
	"github.com/miyakawa-dev/salonflow/internal/transfer"
)

// AIService is the thin boundary to the caption/review-reply worker.
// The generation model and prompts live in the worker, not here.
type AIService interface {
	SuggestCaption(ctx context.Context, req transfer.CaptionSuggestRequest) (*transfer.CaptionSuggestResponse, error)
	SuggestReviewReply(ctx context.Context, req transfer.ReviewReplySuggestRequest) (string, error)
}

type aiService struct {
	baseURL string
	http    *http.Client
}

func NewAIService(cfg config.Config) AIService {
	return &aiService{
		baseURL: cfg.AIWorkerURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *aiService) SuggestCaption(ctx context.Context, req transfer.CaptionSuggestRequest) (*transfer.CaptionSuggestResponse, error) {
	var result transfer.CaptionSuggestResponse
	if err := s.post(ctx, "/v1/captions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *aiService) SuggestReviewReply(ctx context.Context, req transfer.ReviewReplySuggestRequest) (string, error) {
	var result transfer.ReviewReplySuggestResponse
	if err := s.post(ctx, "/v1/review-replies", req, &result); err != nil {
		return "", err
	}
	return result.Reply, nil
}

func (s *aiService) post(ctx context.Context, path string, payload any, out any) error {
	if s.baseURL == "" {
		return errors.New("ai worker is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai worker returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
