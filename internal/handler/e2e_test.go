package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accountsvc/backend/internal/model"
)

// Full lifecycle: admin logs in, creates a user, the new user logs in and
// sees their own record rather than the admin's.
func TestAdminCreatesUserWhoLogsIn(t *testing.T) {
	r, store, _ := newTestEnv()
	store.seedUser("admin", "admin@example.com", "admin123", true)

	adminToken := loginToken(t, r, "admin", "admin123")

	w := authJSON(r, http.MethodPost, "/api/v1/users/", adminToken,
		`{"email":"dave@example.com","username":"dave","password":"password1","full_name":"Dave"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.False(t, created.IsSuperuser)

	daveToken := loginToken(t, r, "dave", "password1")

	w = authGet(r, "/api/v1/users/me", daveToken)
	require.Equal(t, http.StatusOK, w.Code)

	var me model.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, created.ID, me.ID)
	require.Equal(t, "dave", me.Username)
}

// Deactivation flow: DELETE confirms, then the user can no longer log in.
func TestDeactivatedUserCannotLogIn(t *testing.T) {
	r, store, _ := newTestEnv()
	store.seedUser("admin", "admin@example.com", "admin123", true)
	alice := store.seedUser("alice", "alice@example.com", "password1", false)

	adminToken := loginToken(t, r, "admin", "admin123")

	w := authJSON(r, http.MethodDelete, "/api/v1/users/2", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var msg model.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	require.Equal(t, "User deactivated successfully", msg.Message)

	w = postLogin(r, "alice", "password1")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Inactive user")

	// Record survives as inactive.
	stored, err := store.GetUserByID(context.Background(), alice.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
}
