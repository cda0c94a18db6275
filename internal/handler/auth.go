package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountsvc/backend/internal/model"
	"github.com/accountsvc/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary Authenticate and obtain an access token
// @Description Accepts a form-encoded username (or email) and password.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username or email"
// @Param password formData string true "Password"
// @Success 200 {object} model.TokenResponse
// @Failure 400 {object} model.ErrorResponse "Inactive user"
// @Failure 401 {object} model.ErrorResponse "Invalid credentials"
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var form model.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.svc.IssueToken(user)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}
