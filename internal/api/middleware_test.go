package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
)

func TestRedactQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "empty", query: "", want: ""},
		{name: "plain", query: "verbose=1", want: "verbose=1"},
		{name: "auth", query: "auth=dGVzdDp0ZXN0&x=1", want: "auth=REDACTED&x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := redactQuery(q); got != tt.want {
				t.Errorf("redactQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestLoggingMiddlewareLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("test", "1"))
	api.UseMiddleware(newLoggingMiddleware(logger))

	type out struct {
		Body struct {
			OK bool `json:"ok"`
		}
	}
	huma.Get(api, "/api/led", func(_ context.Context, _ *struct{}) (*out, error) {
		return &out{}, nil
	})
	huma.Put(api, "/api/led/brightness", func(_ context.Context, _ *struct{}) (*out, error) {
		return nil, huma.Error503ServiceUnavailable("no LED")
	})

	tests := []struct {
		method, target, wantLevel, wantQuery string
	}{
		{http.MethodGet, "/api/led?auth=c2VjcmV0", "level=DEBUG", "auth=REDACTED"},
		{http.MethodPut, "/api/led/brightness", "level=ERROR", ""},
	}
	for _, tt := range tests {
		buf.Reset()
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.target, nil))
		line := buf.String()
		if !strings.Contains(line, tt.wantLevel) {
			t.Errorf("%s %s logged %q, want %s", tt.method, tt.target, line, tt.wantLevel)
		}
		if tt.wantQuery != "" && !strings.Contains(line, tt.wantQuery) {
			t.Errorf("%s %s logged %q, want query %s", tt.method, tt.target, line, tt.wantQuery)
		}
		if strings.Contains(line, "c2VjcmV0") {
			t.Errorf("credentials leaked into log: %q", line)
		}
	}
}
