package middleware

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/audit"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/identity"
)

// TokenKeyEnv names the environment variable holding the base64 signing key.
const TokenKeyEnv = "NOTES_TOKEN_KEY"

// MinTokenKeySize is the shortest accepted HMAC key in bytes.
const MinTokenKeySize = 32

var (
	// ErrNoTokenKey is returned by TokenKeyFromEnv when the variable is unset.
	ErrNoTokenKey = errors.New("token signing key not set")
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenKeyFromEnv decodes NOTES_TOKEN_KEY.
func TokenKeyFromEnv() ([]byte, error) {
	encoded := os.Getenv(TokenKeyEnv)
	if encoded == "" {
		return nil, ErrNoTokenKey
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", TokenKeyEnv, err)
	}
	if len(key) < MinTokenKeySize {
		return nil, fmt.Errorf("%s must decode to at least %d bytes", TokenKeyEnv, MinTokenKeySize)
	}
	return key, nil
}

// TokenAuthenticator issues and verifies HS256 bearer tokens whose subject
// is the caller's principal.
type TokenAuthenticator struct {
	key []byte
}

// NewTokenAuthenticator creates a new token authenticator middleware
func NewTokenAuthenticator(key []byte) *TokenAuthenticator {
	return &TokenAuthenticator{key: key}
}

// Issue signs a token for principal valid for ttl.
func (a *TokenAuthenticator) Issue(principal string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": principal,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
}

// Verify parses tokenString and returns its subject.
func (a *TokenAuthenticator) Verify(tokenString string) (identity.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return identity.Principal(sub), nil
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (a *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), identity.Anonymous)))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "InvalidToken", "Malformed authorization header")
			return
		}

		principal, err := a.Verify(tokenString)
		if err != nil {
			audit.Log(audit.AuthenticateEvent{
				ClientIP:     remoteIP(r),
				ErrorMessage: err.Error(),
			})
			writeError(w, http.StatusUnauthorized, "InvalidToken", err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), principal)))
	})
}
