package user

import (
	"context"
	"errors"
	"strings"

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

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("user_repo")}
}

const selectUser = `
SELECT u.id::text, u.name, u.email, u.password_hash, COALESCE(c.id::text, ''), u.created_at, u.updated_at
FROM users u
LEFT JOIN carts c ON c.user_id = u.id
`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	out := u
	out.Email = strings.ToLower(u.Email)
	err = tx.QueryRow(ctx, `
INSERT INTO users (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id::text, created_at, updated_at
`, u.Name, out.Email, u.PasswordHash).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("insert user", zap.Error(err))
		return nil, err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO carts (user_id) VALUES ($1) RETURNING id::text`, out.ID).Scan(&out.CartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("user created", zap.String("id", out.ID), zap.String("cart_id", out.CartID))
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, selectUser+"WHERE u.id = $1", id))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, selectUser+"WHERE lower(u.email) = lower($1) LIMIT 1", strings.TrimSpace(email)))
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	var email *string
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		email = &e
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE users
SET name = COALESCE($2, name),
    email = COALESCE($3, email),
    updated_at = now()
WHERE id = $1
`, id, in.Name, email)
	if err != nil {
		switch {
		case sqlutil.IsUniqueViolation(err):
			return nil, domain.ErrAlreadyExists
		case sqlutil.IsInvalidText(err):
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CartID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
