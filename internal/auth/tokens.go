package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrEmptySigningKey = errors.New("empty signing key")
	ErrInvalidToken    = errors.New("invalid token")
)

// Manager mints and verifies HS256 session tokens
type Manager struct {
	signingKey string
	issuer     string
	now        func() time.Time
}

func NewManager(signingKey, issuer string) (*Manager, error) {
	if signingKey == "" {
		return nil, ErrEmptySigningKey
	}

	return &Manager{signingKey: signingKey, issuer: issuer, now: time.Now}, nil
}

// NewJWT issues a token for the subject that expires after ttl
func (m *Manager) NewJWT(subject string, ttl time.Duration) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: now.Add(ttl).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    m.issuer,
		Subject:   subject,
	})

	signed, err := token.SignedString([]byte(m.signingKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// NewUserJWT issues a token whose subject is a numeric user ID
func (m *Manager) NewUserJWT(userID int64, ttl time.Duration) (string, error) {
	return m.NewJWT(strconv.FormatInt(userID, 10), ttl)
}

// Parse verifies the token and returns its subject
func (m *Manager) Parse(accessToken string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// ParseUserID verifies the token and returns its numeric subject
func (m *Manager) ParseUserID(accessToken string) (int64, error) {
	subject, err := m.Parse(accessToken)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, subject)
	}
	return id, nil
}
