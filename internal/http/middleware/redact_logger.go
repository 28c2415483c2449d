// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the structured access logger. The
// values that flow through this API and must never reach logs are: session
// JWTs (cookie or Authorization bearer), user emails, user/history object
// ids, and whatever personal data a client stuffs into a query string. The
// logger scrubs all of these from request metadata before emitting.
//
// Default-safe: request and response bodies are never logged, only metadata
// (method, path, query, status, size, latency, headers).
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    SessionCookie: cfg.Session.CookieName,
//	}))
//
// Scrubbing reduces but does not eliminate leak risk; clients should still
// avoid carrying identifiers in query strings where possible.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders lists extra HTTP header names whose values are fully replaced
// with "[REDACTED]". Matching is case-insensitive and merged with the
// built-in sensitive headers ("Authorization", "Cookie", "Set-Cookie").
//
// SessionCookie names the session cookie; when set, any "<name>=<value>"
// occurrence is masked wherever it appears (query strings, non-masked
// headers), not only inside the fully masked Cookie header.
type RedactOptions struct {
	MaskHeaders   []string
	SessionCookie string
}

// RedactingLogger returns a Gin middleware that logs HTTP requests with
// sensitive values scrubbed.
//
// Scrubbed patterns, in application order:
//   - the configured session cookie pair ("token=...")
//   - JWT-shaped tokens (three dot-separated base64url segments)
//   - UUIDs (request ids, history entry ids)
//   - 24-hex Mongo object ids (user ids, the session token subject)
//   - email addresses
//   - phone-number-shaped digit runs
//
// Object ids run after UUIDs so the UUID's hex segments are already gone;
// phone numbers run last because that pattern is the loosest. Severity is
// chosen by response status: info, warn for 4xx, error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	// Compile regex patterns once.
	jwtRE := regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]*\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`)
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	oidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{24}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern (prevents matching hex characters from ids).
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	var sessionRE *regexp.Regexp
	if name := strings.TrimSpace(opts.SessionCookie); name != "" {
		sessionRE = regexp.MustCompile(regexp.QuoteMeta(name) + `=[^;&\s]+`)
	}

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := s
		if sessionRE != nil {
			out = sessionRE.ReplaceAllString(out, opts.SessionCookie+"=[REDACTED:session]")
		}
		out = jwtRE.ReplaceAllString(out, "[REDACTED:token]")
		out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
		out = oidRE.ReplaceAllString(out, "[REDACTED:oid]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
		return out
	}

	// Build header mask set (case-insensitive).
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Request path and query.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		rawQuery := c.Request.URL.RawQuery
		safeQuery := redact(rawQuery)

		// Scrub headers.
		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			keyLower := strings.ToLower(k)
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[keyLower]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		// Severity based on status.
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
