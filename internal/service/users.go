package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountsvc/backend/internal/db"
	"github.com/accountsvc/backend/internal/model"
)

const pgUniqueViolation = "23505"

// UserStore is the persistence surface the services need. *db.Postgres
// implements it; tests substitute in-memory fakes.
type UserStore interface {
	CreateUser(ctx context.Context, params db.NewUser) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, skip, limit int, activeOnly bool) ([]model.User, error)
	UpdateUser(ctx context.Context, userID int64, upd db.UserUpdate) (*model.User, error)
	DeactivateUser(ctx context.Context, userID int64) (*model.User, error)
}

// UserService implements user management: creation, lookup, listing, partial
// updates, and deactivation. Deletion is always modeled as deactivation.
type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, db.NewUser{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	users, err := s.store.ListUsers(ctx, skip, limit, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, userID int64, req model.UserUpdateRequest) (*model.User, error) {
	upd := db.UserUpdate{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashed := string(hash)
		upd.PasswordHash = &hashed
	}

	user, err := s.store.UpdateUser(ctx, userID, upd)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserService) Deactivate(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.store.DeactivateUser(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}
	return user, nil
}

// RequireSuperuser is the authorization gate for superuser-only endpoints.
func RequireSuperuser(user *model.User) error {
	if user == nil || !user.IsSuperuser {
		return ErrForbidden
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
