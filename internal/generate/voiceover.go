package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const speechPath = "/v1/audio/speech"

// SynthesizeVoiceover reads script text through the speech model and
// returns the raw audio bytes.
func (s *Service) SynthesizeVoiceover(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("voiceover text is empty")
	}
	cfg := s.cfg.Voiceover

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("no base URL configured")
	}

	body := map[string]any{
		"model": cfg.Name,
		"input": text,
	}
	if voice := strings.TrimSpace(cfg.Voice); voice != "" {
		body["voice"] = voice
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var audio []byte
	err = s.withRetry(ctx, "voiceover", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+speechPath, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+apiKey())
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			errBody, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("speech request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
		}

		audio, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, errors.New("speech model returned no audio")
	}
	return audio, nil
}
