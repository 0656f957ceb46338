package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// streamPaths are long-lived SSE endpoints. They are logged when the
// client disconnects, which may be hours after the request.
var streamPaths = map[string]bool{
	"/api/events":      true,
	"/api/logs/stream": true,
	"/api/metrics":     true,
}

// newLoggingMiddleware logs each request once it completes. Reads and
// preflights go to debug so that a polling client does not flood the log;
// changes are info, client errors warn and server errors error.
func newLoggingMiddleware(logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		method := ctx.Method()
		u := ctx.URL()
		path := u.Path

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.String("remote_addr", ctx.RemoteAddr()),
		}
		if query := redactQuery(u.Query()); query != "" {
			attrs = append(attrs, slog.String("query", query))
		}
		if ua := ctx.Header("User-Agent"); ua != "" {
			attrs = append(attrs, slog.String("user_agent", ua))
		}

		next(ctx)

		status := ctx.Status()
		attrs = append(attrs,
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		)

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case method == http.MethodOptions, method == http.MethodGet && !streamPaths[path]:
			level = slog.LevelDebug
		}
		logger.LogAttrs(ctx.Context(), level, "HTTP request completed", attrs...)
	}
}

// redactQuery hides the SSE auth parameter, which carries credentials.
func redactQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	if q.Has("auth") {
		q.Set("auth", "REDACTED")
	}
	s, err := url.QueryUnescape(q.Encode())
	if err != nil {
		return q.Encode()
	}
	return strings.TrimSpace(s)
}
