// Package handler exposes the service layer over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"recipes/internal/auth"
	"recipes/internal/errors"
	"recipes/internal/model"
)

const (
	// UserKey is the echo context key holding the authenticated *model.User.
	UserKey = "user"
	// ClaimsKey is the echo context key holding the *auth.Claims of the request token.
	ClaimsKey = "token_claims"
)

// CurrentUser returns the authenticated caller.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(UserKey).(*model.User)
	if !ok || user == nil {
		return nil, fail(errors.ErrUnauthenticated)
	}
	return user, nil
}

// CurrentClaims returns the claims of the token the request was authenticated with.
func CurrentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fail(errors.ErrUnauthenticated)
	}
	return claims, nil
}

// MethodNotAllowed rejects an operation the resource does not define.
func MethodNotAllowed(c echo.Context) error {
	return fail(errors.ErrMethodNotAllowed)
}

// fail converts a domain error into an echo HTTP error carrying an ErrorResponse.
func fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	he := echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	if httpErr.StatusCode >= http.StatusInternalServerError {
		he.SetInternal(err)
	}
	return he
}

// bind decodes the request body into payload.
func bind(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		msg := "malformed request body"
		if he, ok := err.(*echo.HTTPError); ok {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error:  msg,
			Code:   "INVALID_BODY",
			Fields: map[string][]string{errors.NonFieldErrors: {msg}},
		})
	}
	return nil
}

// validate runs the validator installed on the echo instance.
func validate(c echo.Context, payload interface{}) error {
	if err := c.Validate(payload); err != nil {
		return fail(err)
	}
	return nil
}

// pathID parses the :id path parameter. Ids that cannot exist are not found.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fail(errors.ErrNotFound)
	}
	return uint(id), nil
}
