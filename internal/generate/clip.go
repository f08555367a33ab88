package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RenderClip asks the video model to animate a sequence and returns the
// raw video bytes. The model is prompted with the visual prompt plus the
// voiceover script so motion and narration stay aligned.
func (s *Service) RenderClip(ctx context.Context, prompt, script string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("clip prompt is empty")
	}
	cfg := s.cfg.Clip

	var b strings.Builder
	b.WriteString(prompt)
	if strings.TrimSpace(script) != "" {
		fmt.Fprintf(&b, "\nThe shot accompanies this narration: %s", script)
	}

	body := map[string]any{
		"model": cfg.Name,
		"messages": []map[string]any{
			{"role": "user", "content": b.String()},
		},
		"n": 1,
	}
	if size := strings.TrimSpace(cfg.Size); size != "" {
		body["size"] = size
	}

	var content string
	err := s.withRetry(ctx, "clip", func() error {
		var err error
		content, err = s.postCompletions(ctx, cfg.BaseURL, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	data, err := s.mediaBytes(ctx, content, ".mp4", ".mov", ".webm")
	if err != nil {
		return nil, fmt.Errorf("fetching clip: %w", err)
	}
	return data, nil
}
