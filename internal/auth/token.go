// Package auth issues and verifies the bearer credentials used by the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"docqa/internal/config"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired, wrongly signed and wrongly typed tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenPair is returned on credential exchange.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type claims struct {
	jwt.StandardClaims
	Type string `json:"typ"`
}

// Issuer signs HS256 tokens. Access and refresh tokens share the key and differ by typ and lifetime.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer builds an Issuer from configuration.
func NewIssuer(cfg config.AuthConfig) *Issuer {
	return &Issuer{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.AccessTTLSec) * time.Second,
		refreshTTL: time.Duration(cfg.RefreshTTLSec) * time.Second,
		now:        time.Now,
	}
}

// IssuePair signs a fresh access/refresh pair for userID.
func (i *Issuer) IssuePair(userID string) (TokenPair, error) {
	access, err := i.sign(userID, TypeAccess, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(userID, TypeRefresh, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess signs a new access token for userID.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	return i.sign(userID, TypeAccess, i.accessTTL)
}

// ParseAccess verifies an access token and returns its subject.
func (i *Issuer) ParseAccess(token string) (string, error) {
	return i.parse(token, TypeAccess)
}

// ParseRefresh verifies a refresh token and returns its subject.
func (i *Issuer) ParseRefresh(token string) (string, error) {
	return i.parse(token, TypeRefresh)
}

func (i *Issuer) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	c := claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Type: typ,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return s, nil
}

func (i *Issuer) parse(token, typ string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if c.Type != typ || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
