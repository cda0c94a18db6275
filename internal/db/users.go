package db

import (
	"context"
	"strings"

	"github.com/accountsvc/backend/internal/model"
)

const userColumns = `id, email, username, password_hash, full_name, is_active, is_superuser, created_at, updated_at`

// NewUser carries the fields for an INSERT into users.
type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
	FullName     *string
	IsSuperuser  bool
}

// UserUpdate carries a partial UPDATE; nil fields keep their current value.
type UserUpdate struct {
	Email        *string
	Username     *string
	FullName     *string
	PasswordHash *string
}

func (db *Postgres) CreateUser(ctx context.Context, params NewUser) (*model.User, error) {
	query := `
		INSERT INTO users (email, username, password_hash, full_name, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		strings.ToLower(params.Email),
		params.Username,
		params.PasswordHash,
		params.FullName,
		params.IsSuperuser,
	)
	return scanUser(row)
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, username))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (db *Postgres) ListUsers(ctx context.Context, skip, limit int, activeOnly bool) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id OFFSET $1 LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Username,
			&user.HashedPassword,
			&user.FullName,
			&user.IsActive,
			&user.IsSuperuser,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (db *Postgres) UpdateUser(ctx context.Context, userID int64, upd UserUpdate) (*model.User, error) {
	if upd.Email != nil {
		lowered := strings.ToLower(*upd.Email)
		upd.Email = &lowered
	}
	query := `
		UPDATE users SET
			email = COALESCE($2, email),
			username = COALESCE($3, username),
			full_name = COALESCE($4, full_name),
			password_hash = COALESCE($5, password_hash),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query, userID, upd.Email, upd.Username, upd.FullName, upd.PasswordHash)
	return scanUser(row)
}

func (db *Postgres) DeactivateUser(ctx context.Context, userID int64) (*model.User, error) {
	query := `
		UPDATE users SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.HashedPassword,
		&user.FullName,
		&user.IsActive,
		&user.IsSuperuser,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
