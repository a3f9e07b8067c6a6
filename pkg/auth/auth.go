package auth

import (
	"errors"
	"net/http"
	"strings"
	"sync"
)

const keyPrefix = "Key "

var (
	// ErrMissingKey indicates that the Authorization header was not provided.
	ErrMissingKey = errors.New("missing API key")
	// ErrInvalidPrefix indicates the header did not use the required Key prefix.
	ErrInvalidPrefix = errors.New("invalid authorization prefix")
)

// ExtractKey parses a "Key <token>" Authorization header.
func ExtractKey(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingKey
	}

	if !strings.HasPrefix(header, keyPrefix) {
		return "", ErrInvalidPrefix
	}

	token := strings.TrimPrefix(header, keyPrefix)
	if token == "" {
		return "", ErrMissingKey
	}

	return token, nil
}

// KeyHeaders attaches "Authorization: Key <token>" to requests per endpoint
// code. It implements netconfig.HeaderSource.
type KeyHeaders struct {
	mu       sync.RWMutex
	tokens   map[string]string
	fallback string
}

// NewKeyHeaders returns a source that uses fallback for codes without a
// token of their own. An empty fallback attaches nothing for those codes.
func NewKeyHeaders(fallback string) *KeyHeaders {
	return &KeyHeaders{tokens: map[string]string{}, fallback: fallback}
}

// SetToken stores the token for code.
func (k *KeyHeaders) SetToken(code, token string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tokens[code] = token
}

// Headers returns the Authorization header for code.
func (k *KeyHeaders) Headers(code string) (http.Header, error) {
	k.mu.RLock()
	token, ok := k.tokens[code]
	k.mu.RUnlock()
	if !ok {
		token = k.fallback
	}
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", keyPrefix+token)
	}
	return h, nil
}
