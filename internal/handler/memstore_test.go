package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountsvc/backend/internal/config"
	"github.com/accountsvc/backend/internal/db"
	"github.com/accountsvc/backend/internal/model"
	"github.com/accountsvc/backend/internal/service"
)

const testSecret = "test-secret-key"

// memStore is an in-memory service.UserStore with the same error contract as
// *db.Postgres: pgx.ErrNoRows for missing rows, pgconn.PgError 23505 for
// unique violations.
type memStore struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*model.User
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*model.User{}}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
}

func (m *memStore) CreateUser(_ context.Context, params db.NewUser) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(params.Email)
	for _, u := range m.users {
		if u.Email == email || u.Username == params.Username {
			return nil, uniqueViolation()
		}
	}

	m.seq++
	now := time.Now()
	user := &model.User{
		ID:             m.seq,
		Email:          email,
		Username:       params.Username,
		FullName:       params.FullName,
		HashedPassword: params.PasswordHash,
		IsActive:       true,
		IsSuperuser:    params.IsSuperuser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (m *memStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) ListUsers(_ context.Context, skip, limit int, activeOnly bool) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := []model.User{}
	for _, u := range m.users {
		if activeOnly && !u.IsActive {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if skip >= len(all) {
		return []model.User{}, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memStore) UpdateUser(_ context.Context, userID int64, upd db.UserUpdate) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	if upd.Email != nil {
		email := strings.ToLower(*upd.Email)
		for id, u := range m.users {
			if id != userID && u.Email == email {
				return nil, uniqueViolation()
			}
		}
		user.Email = email
	}
	if upd.Username != nil {
		for id, u := range m.users {
			if id != userID && u.Username == *upd.Username {
				return nil, uniqueViolation()
			}
		}
		user.Username = *upd.Username
	}
	if upd.FullName != nil {
		user.FullName = upd.FullName
	}
	if upd.PasswordHash != nil {
		user.HashedPassword = *upd.PasswordHash
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

func (m *memStore) DeactivateUser(_ context.Context, userID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.IsActive = false
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

// seedUser inserts a user directly, bypassing the service layer.
func (m *memStore) seedUser(username, email, password string, superuser bool) *model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user, err := m.CreateUser(context.Background(), db.NewUser{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsSuperuser:  superuser,
	})
	if err != nil {
		panic(err)
	}
	return user
}

func newTestEnv() (*gin.Engine, *memStore, *service.AuthService) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	cfg := config.Config{
		App: config.AppConfig{ProjectName: "account-service"},
		Auth: config.AuthConfig{
			SecretKey:      testSecret,
			AccessTokenTTL: 30 * time.Minute,
		},
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
	}
	authSvc := service.NewAuthService(store, cfg.Auth)
	userSvc := service.NewUserService(store)
	return NewRouter(cfg, authSvc, userSvc), store, authSvc
}
