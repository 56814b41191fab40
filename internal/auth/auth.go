// Package auth turns a bearer credential into an opaque user identifier.
// The rest of the system never inspects the credential itself.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken is returned for any credential that does not verify.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier checks a bearer token and yields the user id it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// JWTVerifier validates HMAC-signed JWTs. The user id is the sub claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier builds a verifier for tokens signed with secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// sessionStore is the slice of the redis API the verifier uses.
type sessionStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionVerifier resolves opaque session ids against Redis. Sessions are
// written by the authentication service under session:<id>.
type SessionVerifier struct {
	store sessionStore
}

// NewSessionVerifier builds a verifier over the given Redis client.
func NewSessionVerifier(client *redis.Client) *SessionVerifier {
	return &SessionVerifier{store: client}
}

func (v *SessionVerifier) Verify(ctx context.Context, token string) (string, error) {
	userID, err := v.store.Get(ctx, "session:"+token).Result()
	if err != nil || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
