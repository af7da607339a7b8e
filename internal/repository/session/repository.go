package session

import (
	"context"

	"puntomoda/internal/domain"
)

// Repository stores issued session ids so tokens can be revoked before they expire.
type Repository interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
