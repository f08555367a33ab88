package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
)

const completionsPath = "/v1/chat/completions"

// Service calls the generative model endpoints the production assistant
// sequences: script, still, voiceover, clip. Everything speaks the
// OpenAI-compatible HTTP surface, so one client covers all four.
type Service struct {
	cfg     config.Generation
	client  *http.Client
	logger  *slog.Logger
	backoff time.Duration
}

// New creates a generation service from the configured endpoints.
func New(cfg config.Generation, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger,
		backoff: 2 * time.Second,
	}
}

// apiKey returns the bearer key for the media endpoints. Keys come from
// the environment only, never from the config file.
func apiKey() string {
	if k := strings.TrimSpace(os.Getenv("VIBE_STUDIO_API_KEY")); k != "" {
		return k
	}
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

// withRetry runs fn up to three times with linear backoff. Transient
// provider hiccups are common enough that a single failed call should not
// fail a whole production pass.
func (s *Service) withRetry(ctx context.Context, label string, fn func() error) error {
	const maxAttempts = 3
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * s.backoff
			s.logger.Warn("retrying generation call", "service", label, "attempt", attempt, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			s.logger.Warn("generation call failed", "service", label, "attempt", attempt, "error", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("%s failed after %d attempts: %w", label, maxAttempts, lastErr)
}

// postCompletions sends a chat-completions request and returns the first
// choice's content.
func (s *Service) postCompletions(ctx context.Context, baseURL string, body map[string]any) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "", errors.New("no base URL configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey())
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completions request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decoding completions response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// download fetches a result URL into memory.
func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s returned %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var (
	urlPattern     = regexp.MustCompile(`https?://[^\s)<>"'\x60]+`)
	dataURLPattern = regexp.MustCompile(`data:[a-z]+/[a-z0-9.+-]+;base64,([A-Za-z0-9+/=]+)`)
)

// mediaBytes turns a completion's content into artifact bytes: inline
// base64 payloads are decoded, anything else is treated as a result URL
// and downloaded. Models answer in prose around the link, so URLs are
// fished out rather than parsed.
func (s *Service) mediaBytes(ctx context.Context, content string, exts ...string) ([]byte, error) {
	if m := dataURLPattern.FindStringSubmatch(content); m != nil {
		data, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			return nil, fmt.Errorf("decoding inline payload: %w", err)
		}
		return data, nil
	}

	url, err := extractMediaURL(content, exts...)
	if err != nil {
		return nil, err
	}
	return s.download(ctx, url)
}

// extractMediaURL picks the most plausible result URL from model prose,
// preferring links that carry one of the wanted extensions.
func extractMediaURL(content string, exts ...string) (string, error) {
	matches := urlPattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return "", errors.New("no result URL in model response")
	}

	for _, candidate := range matches {
		clean := strings.Trim(candidate, "[]()<>\"'`.,")
		lower := strings.ToLower(clean)
		for _, ext := range exts {
			if strings.Contains(lower, ext) {
				return clean, nil
			}
		}
	}
	return strings.Trim(matches[len(matches)-1], "[]()<>\"'`.,"), nil
}
