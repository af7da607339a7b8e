package session

import (
	"context"
	"errors"

	"puntomoda/internal/domain"
	"puntomoda/internal/repository/sqlutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("session_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO sessions (id, user_id, expires_at)
VALUES ($1, $2, $3)
`, s.ID, s.UserID, s.ExpiresAt)
	if err != nil {
		switch {
		case sqlutil.IsUniqueViolation(err):
			return domain.ErrAlreadyExists
		case sqlutil.IsForeignKeyViolation(err), sqlutil.IsInvalidText(err):
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id::text, expires_at
FROM sessions
WHERE id = $1
`, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Info("expired sessions removed", zap.Int64("count", n))
	}
	return cmd.RowsAffected(), nil
}
