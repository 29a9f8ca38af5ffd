package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// UserRepo is the identity/role provider. Its only engine-facing contract
// is the admin check consulted by the quota tracker.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// FindByUserID returns a single user record.
func (r *UserRepo) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	query := `
		SELECT user_id, username, is_admin, first_seen, last_seen
		FROM users
		WHERE user_id = $1`

	var u model.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.Username, &u.IsAdmin, &u.FirstSeen, &u.LastSeen,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsAdmin reports whether the user has the admin role. Unknown users are
// not admins.
func (r *UserRepo) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := r.pool.QueryRow(ctx,
		`SELECT is_admin FROM users WHERE user_id = $1`, userID).Scan(&isAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// CreateIfNotExists inserts a new user with default values if one doesn't
// already exist.
func (r *UserRepo) CreateIfNotExists(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}
