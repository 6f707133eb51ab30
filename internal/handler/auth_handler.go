package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipes/internal/serializer"
	"recipes/internal/service"
)

// AuthHandler handles token endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token godoc
// @Summary Obtain an auth token
// @Description Exchanges email and password for a bearer token. Send it as "Authorization: Token <token>".
// @Tags users
// @Accept json
// @Produce json
// @Param request body serializer.TokenRequest true "Credentials"
// @Success 200 {object} serializer.TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req serializer.TokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validate(c, &req); err != nil {
		return err
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, serializer.TokenResponse{Token: token})
}

// Revoke godoc
// @Summary Revoke the current token
// @Tags users
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/token/revoke [post]
func (h *AuthHandler) Revoke(c echo.Context) error {
	claims, err := CurrentClaims(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
