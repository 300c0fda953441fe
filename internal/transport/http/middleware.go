package httptransport

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gipf-arena/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             &httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

// BodyLogMiddleware attaches the request and response bodies of a route to
// its access log line. Any JSON field named like a token is replaced with
// redacted, so seat and account tokens never reach the log.
func BodyLogMiddleware(maxBytes int) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqBody, _ := io.ReadAll(io.LimitReader(r.Body, int64(maxBytes)+1))
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), r.Body))

			cw := &captureWriter{ResponseWriter: w, limit: maxBytes}
			next.ServeHTTP(cw, r)

			truncatedReq := len(reqBody) > maxBytes
			if truncatedReq {
				reqBody = reqBody[:maxBytes]
			}
			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", loggableBody(reqBody, truncatedReq)),
				slog.Any("response_body", loggableBody(cw.buf.Bytes(), cw.truncated)),
			)
		})
	}
}

type captureWriter struct {
	http.ResponseWriter
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (c *captureWriter) Write(p []byte) (int, error) {
	room := c.limit - c.buf.Len()
	switch {
	case room >= len(p):
		_, _ = c.buf.Write(p)
	case room > 0:
		_, _ = c.buf.Write(p[:room])
		c.truncated = true
	default:
		c.truncated = true
	}
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// loggableBody decodes JSON so the log stays structured. A cut-off body is
// not valid JSON and is dropped rather than logged raw, since it may hold
// a token the redaction could not see.
func loggableBody(b []byte, truncated bool) any {
	if len(b) == 0 {
		return ""
	}
	if truncated {
		return "[truncated]"
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return "[not json]"
	}
	return redactTokens(v)
}

func redactTokens(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if strings.HasSuffix(strings.ToLower(k), "token") {
				if s, ok := inner.(string); ok && s != "" {
					t[k] = "redacted"
				}
				continue
			}
			t[k] = redactTokens(inner)
		}
	case []any:
		for i := range t {
			t[i] = redactTokens(t[i])
		}
	}
	return v
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// AdminAuthMiddleware accepts X-Admin-Key or a bearer token. Without a
// configured key the admin routes stay closed.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				WriteHTTPError(w, http.StatusForbidden, "admin_disabled")
				return
			}
			if !CheckAdminAuth(r, adminKey) {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CheckAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v != "" && keyEqual(v, adminKey) {
		return true
	}
	auth := r.Header.Get("Authorization")
	prefix := "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return keyEqual(auth[len(prefix):], adminKey)
	}
	return false
}

func keyEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func ParsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
