package view

import (
	"net/http"
	"strings"
)

// TokenExtractor reads the caller's credential from the inbound request. The
// token is forwarded to the remote API as-is.
type TokenExtractor interface {
	Token(r *http.Request) string
}

type TokenExtractorFunc func(r *http.Request) string

func (f TokenExtractorFunc) Token(r *http.Request) string {
	return f(r)
}

// BearerTokenExtractor takes the token from "Authorization: Bearer <token>".
type BearerTokenExtractor struct{}

func (BearerTokenExtractor) Token(r *http.Request) string {
	if r == nil {
		return ""
	}
	value := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(value) < 7 || !strings.EqualFold(value[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[7:])
}

type HeaderTokenExtractor struct {
	Header string
}

func (e HeaderTokenExtractor) Token(r *http.Request) string {
	if r == nil || strings.TrimSpace(e.Header) == "" {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(e.Header))
}

// NoToken proxies anonymously.
type NoToken struct{}

func (NoToken) Token(*http.Request) string {
	return ""
}
