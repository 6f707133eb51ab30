package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"recipes/internal/auth"
	"recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/repository"
)

const minPasswordLength = 8

// ProfileInput carries the fields of a profile update. Nil fields are absent.
type ProfileInput struct {
	Email    *string
	Password *string
	Name     *string
}

// UserService manages accounts.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, error)
	CreateSuperuser(ctx context.Context, email, password, name string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, in ProfileInput, mode UpdateMode) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, email string) error
}

// UserOption configures a UserService.
type UserOption func(*userService)

// WithRecipeImages makes DeleteUser remove the image files of the deleted recipes.
func WithRecipeImages(images ImageStore) UserOption {
	return func(s *userService) { s.images = images }
}

// WithUserLogger sets the logger reporting image cleanup failures.
func WithUserLogger(log *slog.Logger) UserOption {
	return func(s *userService) { s.log = log }
}

type userService struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	images ImageStore
	log    *slog.Logger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, opts ...UserOption) UserService {
	s := &userService{repo: repo, hasher: hasher, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an active, unprivileged account.
func (s *userService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	return s.create(ctx, &model.User{Email: email, Name: strings.TrimSpace(name), IsActive: true}, password)
}

// CreateSuperuser creates an account holding staff and superuser flags.
func (s *userService) CreateSuperuser(ctx context.Context, email, password, name string) (*model.User, error) {
	return s.create(ctx, &model.User{
		Email:       email,
		Name:        strings.TrimSpace(name),
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
}

func (s *userService) create(ctx context.Context, user *model.User, password string) (*model.User, error) {
	user.Email = repository.NormalizeEmail(user.Email)
	verr := &errors.ValidationError{}
	if user.Email == "" {
		verr.Add("email", "This field may not be blank.")
	}
	checkPassword(verr, password)
	if !verr.Empty() {
		return nil, verr
	}

	if err := s.ensureEmailFree(ctx, user.Email, 0); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hashed

	if err := s.repo.Create(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, emailTaken()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "get user %d", id)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the account with the given email and everything it
// owns. Recipe image files go once the rows are committed.
func (s *userService) DeleteUser(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "find user %q", email)
	}
	images, err := s.repo.Delete(ctx, user.ID)
	if err != nil {
		return notFound(err, "delete user %d", user.ID)
	}
	if s.images == nil {
		return nil
	}
	for _, path := range images {
		if err := s.images.Delete(path); err != nil {
			s.log.Warn("failed to remove recipe image", "user_id", user.ID, "path", path, "error", err)
		}
	}
	return nil
}

// UpdateProfile changes the account of user id. A full update replaces the
// name with an empty one when it is omitted.
func (s *userService) UpdateProfile(ctx context.Context, id uint, in ProfileInput, mode UpdateMode) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &errors.ValidationError{}
	if mode == FullUpdate {
		if in.Email == nil {
			verr.Add("email", "This field is required.")
		}
		if in.Password == nil {
			verr.Add("password", "This field is required.")
		}
	}
	if in.Email != nil && repository.NormalizeEmail(*in.Email) == "" {
		verr.Add("email", "This field may not be blank.")
	}
	if in.Password != nil {
		checkPassword(verr, *in.Password)
	}
	if !verr.Empty() {
		return nil, verr
	}

	if in.Email != nil {
		email := repository.NormalizeEmail(*in.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	}
	switch {
	case in.Name != nil:
		user.Name = strings.TrimSpace(*in.Name)
	case mode == FullUpdate:
		user.Name = ""
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, emailTaken()
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return user, nil
}

// ensureEmailFree fails with a conflict when email belongs to an account
// other than self.
func (s *userService) ensureEmailFree(ctx context.Context, email string, self uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != self {
		return emailTaken()
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func checkPassword(verr *errors.ValidationError, password string) {
	if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}
}

func emailTaken() error {
	return &errors.ConflictError{Field: "email", Message: "user with this email already exists."}
}
