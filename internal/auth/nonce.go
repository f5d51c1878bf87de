package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
)

// nonceClaims binds a token to one user and one action
type nonceClaims struct {
	jwt.RegisteredClaims
	Action string `json:"act"`
}

// HMACNonceManager issues HS256 authenticity tokens
type HMACNonceManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewNonceManager creates a nonce manager. The secret must not be empty.
func NewNonceManager(secret string, ttl time.Duration) (*HMACNonceManager, error) {
	if secret == "" {
		return nil, errors.New("nonce secret cannot be empty")
	}
	return &HMACNonceManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue creates a token for userID and action
func (m *HMACNonceManager) Issue(userID, action string) (string, error) {
	now := m.now()
	claims := nonceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Action: action,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign nonce: %w", err)
	}
	return token, nil
}

// Verify checks the signature, expiry, user and action of a token
func (m *HMACNonceManager) Verify(token, userID, action string) error {
	if token == "" {
		return domain.ErrForbidden
	}

	claims := &nonceClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithSubject(userID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.ErrForbidden
	}
	if claims.Action != action || claims.ID == "" {
		return domain.ErrForbidden
	}
	return nil
}
