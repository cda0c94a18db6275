package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/accountsvc/backend/internal/model"
	"github.com/accountsvc/backend/internal/service"
)

// writeError maps service errors to HTTP responses. Every client-correctable
// condition gets a detail message; storage faults stay generic.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Incorrect username or password"})
	case errors.Is(err, service.ErrInactiveUser), errors.Is(err, service.ErrUserInactive):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Inactive user"})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Could not validate credentials"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Detail: "User not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "Not enough permissions"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "User with this email or username already exists"})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
	}
}

// writeBindError reports a malformed request body, with a per-field
// breakdown when the failure came from struct validation.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fmt.Sprintf("failed '%s' validation", fe.Tag())
		}
		c.JSON(http.StatusBadRequest, model.ValidationErrorResponse{
			Detail: "Invalid request body",
			Fields: fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid request body"})
}
