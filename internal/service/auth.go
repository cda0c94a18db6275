package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountsvc/backend/internal/config"
	"github.com/accountsvc/backend/internal/db"
	"github.com/accountsvc/backend/internal/model"
)

const tokenType = "bearer"

var (
	// ErrInvalidCredentials covers both unknown user and wrong password so
	// login responses carry no enumeration signal.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("inactive user")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user inactive")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrConflict           = errors.New("email or username already in use")
)

// AuthService verifies credentials, issues signed access tokens, and resolves
// presented tokens back to live user records.
type AuthService struct {
	store         UserStore
	secret        []byte
	tokenTTL      time.Duration
	adminUsername string
	adminPassword string
	adminEmail    string
}

func NewAuthService(store UserStore, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:         store,
		secret:        []byte(cfg.SecretKey),
		tokenTTL:      cfg.AccessTokenTTL,
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		adminEmail:    cfg.AdminEmail,
	}
}

// Authenticate looks up a user by username or email and verifies the
// password. Unknown users and wrong passwords yield the same error.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.GetUserByEmail(ctx, login)
	} else {
		user, err = s.store.GetUserByUsername(ctx, login)
	}
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

// IssueToken builds an HS256-signed access token for a verified user.
func (s *AuthService) IssueToken(user *model.User) (*model.TokenResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.TokenResponse{AccessToken: signed, TokenType: tokenType}, nil
}

// ResolveToken verifies a token's signature and expiry, then re-resolves the
// subject against the store. Resolving against live state makes deactivation
// effective immediately, even for tokens issued before it.
func (s *AuthService) ResolveToken(ctx context.Context, tokenStr string) (*model.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user, nil
}

// EnsureAdmin seeds the bootstrap superuser if it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	if s.adminUsername == "" || s.adminPassword == "" {
		return nil
	}

	_, err := s.store.GetUserByUsername(ctx, s.adminUsername)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	fullName := "System Administrator"
	_, err = s.store.CreateUser(ctx, db.NewUser{
		Email:        s.adminEmail,
		Username:     s.adminUsername,
		PasswordHash: string(hash),
		FullName:     &fullName,
		IsSuperuser:  true,
	})
	return err
}
