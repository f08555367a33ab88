package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RenderStill asks the image model for one frame and returns the raw
// image bytes.
func (s *Service) RenderStill(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("still prompt is empty")
	}
	cfg := s.cfg.Still

	body := map[string]any{
		"model": cfg.Name,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"n": 1,
	}
	if size := strings.TrimSpace(cfg.Size); size != "" {
		body["size"] = size
	}

	var content string
	err := s.withRetry(ctx, "still", func() error {
		var err error
		content, err = s.postCompletions(ctx, cfg.BaseURL, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	data, err := s.mediaBytes(ctx, content, ".png", ".jpg", ".jpeg", ".webp")
	if err != nil {
		return nil, fmt.Errorf("fetching still: %w", err)
	}
	return data, nil
}
