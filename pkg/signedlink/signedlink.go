// Package signedlink issues and verifies the bearer tokens embedded in
// transfer accept/reject links. Tokens are HS256 JWTs bound to one transfer
// and one action.
package signedlink

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"event-ticketing/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrExpired          = errors.New("signature expired")
)

const keyInfo = "event-ticketing/transfer-link/v1"

type claims struct {
	Action Action `json:"act"`
	jwt.RegisteredClaims
}

type Signer struct {
	key     []byte
	ttl     time.Duration
	baseURL string
	clock   utils.Clock
}

// NewSigner derives a 32-byte HMAC key from secret.
func NewSigner(secret string, ttl time.Duration, baseURL string, clock utils.Clock) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signedlink: empty secret")
	}

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive link key: %w", err)
	}

	return &Signer{
		key:     key,
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clock,
	}, nil
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token for action on transfer that stops verifying at expiresAt.
func (s *Signer) Sign(transferID uuid.UUID, action Action, expiresAt time.Time) (string, error) {
	c := claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   transferID.String(),
			IssuedAt:  jwt.NewNumericDate(s.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign %s link: %w", action, err)
	}
	return token, nil
}

// Verify checks that token was issued by s for exactly this transfer and action.
func (s *Signer) Verify(token string, transferID uuid.UUID, action Action) error {
	if token == "" {
		return ErrInvalidSignature
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(t *jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalidSignature
	}

	if c.Subject != transferID.String() || c.Action != action {
		return ErrInvalidSignature
	}
	return nil
}

// URL builds the absolute link for action, e.g.
// https://host/api/transfers/{id}/accept?signature=...
func (s *Signer) URL(transferID uuid.UUID, action Action, expiresAt time.Time) (string, error) {
	token, err := s.Sign(transferID, action, expiresAt)
	if err != nil {
		return "", err
	}
	q := url.Values{"signature": []string{token}}
	return fmt.Sprintf("%s/api/transfers/%s/%s?%s", s.baseURL, transferID, action, q.Encode()), nil
}
