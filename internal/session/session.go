// Package session issues and verifies signed, expiring, revocable session tokens.
//
// Tokens are HS256 JWTs whose jti names a row in the sessions table. A token is
// valid only while its signature checks out, it has not expired, and its row
// still exists.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"puntomoda/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const issuer = "puntomoda"

type store interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	store  store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewManager(st store, secret string, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:  st,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("session"),
	}
}

// Issue records a new session for userID and returns its signed token.
func (m *Manager) Issue(ctx context.Context, userID string) (string, *domain.Session, error) {
	now := m.now()
	s := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return token, &s, nil
}

// Verify checks the token and returns its session. Every failure is
// reported as domain.ErrUnauthorized.
func (m *Manager) Verify(ctx context.Context, token string) (*domain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err))
		return nil, domain.ErrUnauthorized
	}
	if claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	s, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if s.UserID != claims.Subject {
		return nil, domain.ErrUnauthorized
	}
	if !m.now().Before(s.ExpiresAt) {
		_ = m.store.Delete(ctx, s.ID)
		return nil, domain.ErrUnauthorized
	}
	return s, nil
}

// Revoke deletes the session so its token stops verifying. Revoking an
// unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
