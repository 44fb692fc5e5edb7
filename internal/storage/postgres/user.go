package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/drypanda-ecart/internal/domain/user"
)

const (
	findUserByEmailSQL = `SELECT id, role, username, email, password_hash, contact, created_at
		FROM users WHERE email = $1`

	createUserSQL = `INSERT INTO users (id, role, username, email, password_hash, contact, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByEmail returns user.ErrNotFound when no account uses email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, findUserByEmailSQL, email)
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

// Create inserts u. A duplicate email yields user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		u.ID, string(u.Role), u.Username, u.Email, u.PasswordHash, u.Contact, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return errors.Wrapf(err, "create user %s", u.ID)
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(&u.ID, &role, &u.Username, &u.Email, &u.PasswordHash, &u.Contact, &u.CreatedAt)
	u.Role = user.Role(role)
	return u, err
}
