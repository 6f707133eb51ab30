package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipes/internal/serializer"
	"recipes/internal/service"
)

// UserHandler bundles account endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body serializer.UserRequest true "User payload"
// @Success 201 {object} serializer.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/create [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req serializer.UserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Normalize()
	if err := validate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, serializer.UserOf(user))
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security TokenAuth
// @Success 200 {object} serializer.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.UserOf(user))
}

// UpdateMe godoc
// @Summary Update the authenticated user
// @Description PUT replaces the profile and requires email and password; PATCH changes only the fields sent.
// @Tags users
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param user body serializer.ProfileRequest true "Profile fields"
// @Success 200 {object} serializer.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [put]
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	var req serializer.ProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.Input(updateMode(c))
	if err != nil {
		return fail(err)
	}

	updated, err := h.svc.UpdateProfile(c.Request().Context(), user.ID, in, updateMode(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, serializer.UserOf(updated))
}

// updateMode maps the request method to an update mode.
func updateMode(c echo.Context) service.UpdateMode {
	if c.Request().Method == http.MethodPut {
		return service.FullUpdate
	}
	return service.PartialUpdate
}
