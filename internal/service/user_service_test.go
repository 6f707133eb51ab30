package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "recipes/internal/errors"
	"recipes/internal/model"
)

func strPtr(s string) *string { return &s }

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		nameField  string
		setupMock  func(*MockUserRepository)
		wantFields []string
		conflict   bool
	}{
		{
			name:      "successful registration",
			email:     " Test@Example.com ",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "test@example.com" && u.PasswordHash == "hashed:password123" &&
						u.IsActive && !u.IsStaff && !u.IsSuperuser
				})).Return(nil)
			},
		},
		{
			name:     "user already exists",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 3, Email: "existing@example.com"}, nil)
			},
			conflict: true,
		},
		{
			name:     "unique index race",
			email:    "race@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
			conflict: true,
		},
		{
			name:       "short password",
			email:      "test@example.com",
			password:   "pw",
			setupMock:  func(*MockUserRepository) {},
			wantFields: []string{"password"},
		},
		{
			name:       "blank email and password",
			email:      "  ",
			password:   "",
			setupMock:  func(*MockUserRepository) {},
			wantFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, plainHasher{})
			user, err := service.Register(context.Background(), tt.email, tt.password, tt.nameField)

			switch {
			case tt.conflict:
				var conflict *apperrors.ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, "email", conflict.Field)
				assert.Nil(t, user)
			case tt.wantFields != nil:
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				for _, f := range tt.wantFields {
					assert.Contains(t, verr.Fields, f)
				}
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, tt.nameField, user.Name)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateSuperuser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "admin@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := NewUserService(mockRepo, plainHasher{}).CreateSuperuser(context.Background(), "admin@example.com", "password123", "")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateProfile(t *testing.T) {
	current := func() *model.User {
		return &model.User{ID: 1, Email: "me@example.com", Name: "Me", PasswordHash: "hashed:password123", IsActive: true}
	}

	tests := []struct {
		name       string
		input      ProfileInput
		mode       UpdateMode
		setupMock  func(*MockUserRepository)
		check      func(*testing.T, *model.User)
		wantFields []string
		conflict   bool
	}{
		{
			name:  "partial name change keeps credentials",
			input: ProfileInput{Name: strPtr("New Name")},
			mode:  PartialUpdate,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(current(), nil)
				m.On("Update", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Equal(t, "New Name", u.Name)
				assert.Equal(t, "me@example.com", u.Email)
				assert.Equal(t, "hashed:password123", u.PasswordHash)
			},
		},
		{
			name:  "partial password change rehashes",
			input: ProfileInput{Password: strPtr("newpassword123")},
			mode:  PartialUpdate,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(current(), nil)
				m.On("Update", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Equal(t, "hashed:newpassword123", u.PasswordHash)
				assert.Equal(t, "Me", u.Name)
			},
		},
		{
			name:  "full update clears omitted name",
			input: ProfileInput{Email: strPtr("Other@Example.com"), Password: strPtr("password456")},
			mode:  FullUpdate,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(current(), nil)
				m.On("FindByEmail", mock.Anything, "other@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Update", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Equal(t, "other@example.com", u.Email)
				assert.Empty(t, u.Name)
			},
		},
		{
			name:  "full update requires email and password",
			input: ProfileInput{Name: strPtr("x")},
			mode:  FullUpdate,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(current(), nil)
			},
			wantFields: []string{"email", "password"},
		},
		{
			name:  "email owned by someone else",
			input: ProfileInput{Email: strPtr("taken@example.com")},
			mode:  PartialUpdate,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(current(), nil)
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: 2}, nil)
			},
			conflict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			user, err := NewUserService(mockRepo, plainHasher{}).UpdateProfile(context.Background(), 1, tt.input, tt.mode)

			switch {
			case tt.conflict:
				var conflict *apperrors.ConflictError
				assert.ErrorAs(t, err, &conflict)
			case tt.wantFields != nil:
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				for _, f := range tt.wantFields {
					assert.Contains(t, verr.Fields, f)
				}
			default:
				require.NoError(t, err)
				tt.check(t, user)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetUserNotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewUserService(mockRepo, plainHasher{}).GetUser(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "gone@example.com").Return(&model.User{ID: 7}, nil)
	mockRepo.On("Delete", mock.Anything, uint(7)).Return(nil, nil)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(mockRepo, plainHasher{})
	require.NoError(t, svc.DeleteUser(context.Background(), "gone@example.com"))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), "ghost@example.com"), apperrors.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUserRemovesImages(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	users := NewUserService(f.users, plainHasher{}, WithRecipeImages(f.images))

	owner, err := users.Register(ctx, "owner@example.com", "password123", "")
	require.NoError(t, err)
	recipe, err := f.recipes.Create(ctx, owner, sampleInput("Soup"))
	require.NoError(t, err)
	recipe, err = f.recipes.UploadImage(ctx, owner, recipe.ID, "soup.png", bytes.NewReader([]byte("IMG soup")))
	require.NoError(t, err)
	require.Contains(t, f.images.saved, recipe.Image)

	require.NoError(t, users.DeleteUser(ctx, "owner@example.com"))
	assert.NotContains(t, f.images.saved, recipe.Image)
	assert.Equal(t, []string{recipe.Image}, f.images.deleted)
	_, err = users.GetUser(ctx, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything).Return([]model.User{{ID: 1}, {ID: 2}}, nil)

	users, err := NewUserService(mockRepo, plainHasher{}).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
