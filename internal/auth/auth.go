package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/optotask/backend/internal/httpx"
	"github.com/optotask/backend/internal/models"
)

type ctxKey string

const userCtxKey = ctxKey("user")

// ErrInvalidToken covers malformed, unsigned, expired, and wrongly-signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies bearer tokens. Claims stay deliberately thin: the username
// and an expiry window, no scopes and no refresh mechanism.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs an HS256 token naming username, valid for the configured TTL.
func (t *Tokens) Issue(username string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": now.Add(t.ttl).Unix(),
		"iat": now.Unix(),
	})
	return tok.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the embedded username.
func (t *Tokens) Verify(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// UserResolver loads the account a verified token names. A lookup failure is treated
// the same as a bad token, so deleted users cannot keep using old tokens.
type UserResolver func(ctx context.Context, username string) (*models.User, error)

// Require rejects requests without a valid bearer token and stores the resolved User in
// the request context for the wrapped handler.
func (t *Tokens) Require(resolve UserResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if !strings.HasPrefix(raw, "Bearer ") {
			challenge(w)
			return
		}
		username, err := t.Verify(strings.TrimPrefix(raw, "Bearer "))
		if err != nil {
			challenge(w)
			return
		}
		u, err := resolve(r.Context(), username)
		if err != nil {
			challenge(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext extracts the authenticated user.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok && u != nil
}
