package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/gateway/internal/core/ports"
)

const (
	maxLoggedBody = 64 << 10
	redacted      = "[REDACTED]"
)

// RequestLog records every request, successful or not, to sink. For
// POST, PUT and PATCH the JSON payload is recorded with secret fields
// redacted; other bodies are not recorded. The handler error is resolved
// here so the record carries the final status.
func RequestLog(sink ports.RequestLogSink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			var payload string
			if hasLoggedBody(req.Method) && req.Body != nil {
				body, err := io.ReadAll(io.LimitReader(req.Body, maxLoggedBody+1))
				if err == nil {
					// Hand the handler the full body: what was read plus the unread rest.
					req.Body = readCloser{io.MultiReader(bytes.NewReader(body), req.Body), req.Body}
					if len(body) <= maxLoggedBody {
						payload = redactPayload(body)
					}
				}
			}

			if err := next(c); err != nil {
				c.Error(err)
			}

			rec := ports.RequestRecord{
				Time:      start.UTC(),
				RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
				Method:    req.Method,
				Path:      req.URL.Path,
				Status:    c.Response().Status,
				Payload:   payload,
				Latency:   time.Since(start),
			}
			if claims, ok := ClaimsFrom(c); ok {
				rec.Principal = claims.Username
			}
			sink.Record(rec)
			return nil
		}
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func hasLoggedBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// redactPayload re-encodes a JSON body with secret values replaced. Bodies
// that are not JSON are dropped since they cannot be redacted reliably.
func redactPayload(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}
	out, err := json.Marshal(redactValue(v))
	if err != nil {
		return ""
	}
	return string(out)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if isSecretKey(k) {
				t[k] = redacted
				continue
			}
			t[k] = redactValue(val)
		}
	case []any:
		for i := range t {
			t[i] = redactValue(t[i])
		}
	}
	return v
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") ||
		strings.Contains(k, "token") ||
		strings.Contains(k, "secret") ||
		k == "authorization"
}
