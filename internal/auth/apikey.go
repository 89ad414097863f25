// Package auth guards administrative endpoints with a static API key.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
)

// GenerateAPIKey returns a cryptographically random, URL-safe API key string.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashAPIKey returns a deterministic SHA-256 hex digest of key + pepper.
func HashAPIKey(key, pepper string) string {
	sum := sha256.Sum256([]byte(key + ":" + pepper))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeHashEquals compares two hex hash strings in constant time.
func ConstantTimeHashEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Verifier checks presented keys against one configured key. Only the
// peppered hash is kept in memory.
type Verifier struct {
	pepper string
	hash   string
}

// NewVerifier returns a verifier for key, or nil when key is blank
// (meaning the guarded endpoint is open).
func NewVerifier(key string) (*Verifier, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	pepper, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	return &Verifier{pepper: pepper, hash: HashAPIKey(key, pepper)}, nil
}

// Verify reports whether presented matches the configured key. A nil
// verifier accepts everything.
func (v *Verifier) Verify(presented string) bool {
	if v == nil {
		return true
	}
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return false
	}
	return ConstantTimeHashEquals(HashAPIKey(presented, v.pepper), v.hash)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
