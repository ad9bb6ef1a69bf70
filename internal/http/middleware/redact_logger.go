// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an access log that scrubs personal data before it is
// written: exact coordinates, device tokens, pair codes, and e-mail
// addresses. Sensitive headers are masked wholesale.
package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are masked in addition to Authorization, Cookie,
	// Set-Cookie, and X-Device-Token.
	MaskHeaders []string
	// MaskParams are query parameters whose values are replaced entirely.
	MaskParams []string
}

var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Coordinates with more than two decimals identify a place closely.
	coordRE = regexp.MustCompile(`-?\b\d{1,3}\.\d{3,}\b`)
)

// Redact scrubs e-mail addresses and precise coordinates from s.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return coordRE.ReplaceAllString(s, "[REDACTED:coord]")
}

// redactQuery masks listed parameters outright and scrubs the rest.
func redactQuery(raw string, masked map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return Redact(raw)
	}
	for k, vv := range vals {
		if _, ok := masked[strings.ToLower(k)]; ok {
			vals[k] = []string{"[REDACTED]"}
			continue
		}
		for i := range vv {
			vv[i] = Redact(vv[i])
		}
	}
	return vals.Encode()
}

func lowerSet(defaults []string, extra []string) map[string]struct{} {
	out := make(map[string]struct{}, len(defaults)+len(extra))
	for _, list := range [][]string{defaults, extra} {
		for _, h := range list {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				out[h] = struct{}{}
			}
		}
	}
	return out
}

// RedactingLogger logs each request on the request-scoped logger with its
// query string and headers scrubbed.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := lowerSet([]string{"authorization", "cookie", "set-cookie", "x-device-token"}, opts.MaskHeaders)
	maskParams := lowerSet([]string{"pair_code", "device_token", "token"}, opts.MaskParams)

	return func(c *gin.Context) {
		start := time.Now()
		path := routeLabel(c)
		query := redactQuery(c.Request.URL.RawQuery, maskParams)

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = Redact(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		lg := LoggerFrom(c)
		ev := lg.Info()
		switch {
		case status >= 500:
			ev = lg.Error()
		case status >= 400:
			ev = lg.Warn()
		}
		ev.Str("request_id", c.Writer.Header().Get(requestIDHeader)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
