package serializer

import (
	stderrors "errors"
	"strings"

	"recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/service"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// UserRequest is the registration payload.
type UserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=255"`
}

// Normalize trims surrounding whitespace from text fields.
func (r *UserRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// ProfileRequest updates the caller's profile. Absent fields are left
// unchanged by a partial update and are required by a full one.
type ProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
}

// Input validates the payload for mode and converts it to a service input.
func (r *ProfileRequest) Input(mode service.UpdateMode) (service.ProfileInput, error) {
	trimPtr(r.Email)
	trimPtr(r.Name)

	verr := &errors.ValidationError{}
	if err := Validate(r); err != nil && !stderrors.As(err, &verr) {
		return service.ProfileInput{}, err
	}
	if mode == service.FullUpdate {
		if r.Email == nil {
			verr.Add("email", msgRequired)
		}
		if r.Password == nil {
			verr.Add("password", msgRequired)
		}
	}
	if !verr.Empty() {
		return service.ProfileInput{}, verr
	}
	return service.ProfileInput{Email: r.Email, Password: r.Password, Name: r.Name}, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// TokenRequest carries credentials exchanged for a token.
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued token.
type TokenResponse struct {
	Token string `json:"token"`
}

// User is the read representation of an account. The password is never rendered.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserOf represents u.
func UserOf(u *model.User) User {
	return User{Email: u.Email, Name: u.Name}
}
