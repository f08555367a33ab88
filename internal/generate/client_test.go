package generate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
)

func testService(cfg config.Generation) *Service {
	svc := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.backoff = time.Millisecond
	return svc
}

func writeCompletion(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
}

func TestExtractMediaURL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		exts    []string
		want    string
		wantErr bool
	}{
		{
			name:    "prefers matching extension",
			content: "See https://cdn.example.com/page.html and https://cdn.example.com/out/frame.png for the result.",
			exts:    []string{".png"},
			want:    "https://cdn.example.com/out/frame.png",
		},
		{
			name:    "falls back to last URL",
			content: "first https://a.example.com/one then https://b.example.com/two",
			exts:    []string{".mp4"},
			want:    "https://b.example.com/two",
		},
		{
			name:    "markdown link trimmed",
			content: "![frame](https://cdn.example.com/frame.png)",
			exts:    []string{".png"},
			want:    "https://cdn.example.com/frame.png",
		},
		{
			name:    "no URL at all",
			content: "sorry, nothing here",
			exts:    []string{".png"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractMediaURL(tt.content, tt.exts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaBytesInlinePayload(t *testing.T) {
	svc := testService(config.Generation{})

	raw := []byte("tiny-image")
	content := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	data, err := svc.mediaBytes(context.Background(), content, ".png")
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestMediaBytesDownloads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /out/frame.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := testService(config.Generation{})
	data, err := svc.mediaBytes(context.Background(), "done: "+srv.URL+"/out/frame.png", ".png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestWithRetryRecovers(t *testing.T) {
	svc := testService(config.Generation{})

	calls := 0
	err := svc.withRetry(context.Background(), "test", func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryExhausts(t *testing.T) {
	svc := testService(config.Generation{})

	boom := errors.New("boom")
	calls := 0
	err := svc.withRetry(context.Background(), "test", func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestPostCompletions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])

		writeCompletion(w, "  hello  ")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := testService(config.Generation{})
	content, err := svc.postCompletions(context.Background(), srv.URL, map[string]any{"model": "test-model"})
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestPostCompletionsErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model melted", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := testService(config.Generation{})

	_, err := svc.postCompletions(context.Background(), srv.URL, map[string]any{})
	require.ErrorContains(t, err, "502")

	_, err = svc.postCompletions(context.Background(), "", map[string]any{})
	require.ErrorContains(t, err, "no base URL")
}
