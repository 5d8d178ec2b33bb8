// ABOUTME: Access-token verification for hosted-backend session JWTs.
// ABOUTME: Validates HS256 tokens and maps the subject claim to an Identity.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig holds the verification parameters for access tokens.
type TokenConfig struct {
	Secret string
	Issuer string
}

// ErrMissingToken is returned when no access token is supplied.
var ErrMissingToken = errors.New("missing access token")

// ErrInvalidToken wraps parsing and validation errors.
var ErrInvalidToken = errors.New("invalid access token")

// Session is the verified content of an access token.
type Session struct {
	Identity  Identity
	Email     string
	ExpiresAt time.Time
}

// ParseToken validates token and returns the session it describes.
func ParseToken(token string, cfg TokenConfig) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	return &Session{
		Identity:  Identity{UserID: subject},
		Email:     email,
		ExpiresAt: exp.Time,
	}, nil
}

// IssueToken signs a token for userID, valid for ttl. Used for local
// sessions and tests; the hosted backend issues production tokens.
func IssueToken(userID string, ttl time.Duration, cfg TokenConfig) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if cfg.Issuer != "" {
		claims.Issuer = cfg.Issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}
