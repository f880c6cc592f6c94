package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-entity-service/internal/domain/user"
	pkgerrors "user-entity-service/pkg/errors"
	"user-entity-service/pkg/security"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]*domain.User, int64, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.User), args.Get(1).(int64), args.Error(2)
}

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	return New(mockRepo, zaptest.NewLogger(t)), mockRepo
}

// ==================== CREATE USER TESTS ====================

func TestCreateUser_CredentialsOnly(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Equal(domain.NewWithCredentials("a@b.com", "secret"))
	})).Return(nil)

	resp, err := svc.CreateUser(ctx, CreateUserRequest{Email: "a@b.com", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.Email)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_AllFields(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	want := domain.NewUser(domain.StringPtr("a@b.com"), domain.StringPtr("Alice"), domain.StringPtr("secret"), 1700000000000)

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(want.Equal)).Return(nil)

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Email:    "a@b.com",
		Name:     domain.StringPtr("Alice"),
		Password: "secret",
		Token:    1700000000000,
	})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantMsg string
	}{
		{"missing email", CreateUserRequest{Password: "p"}, "Email is required"},
		{"bad email", CreateUserRequest{Email: "not-an-email", Password: "p"}, "Email must be a valid email"},
		{"missing password", CreateUserRequest{Email: "a@b.com"}, "Password is required"},
		{"long name", CreateUserRequest{Email: "a@b.com", Password: "p", Name: domain.StringPtr(strings.Repeat("n", 65))}, "Name must be at most 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := setupTestService(t)

			resp, err := svc.CreateUser(context.Background(), tt.req)

			assert.Nil(t, resp)
			var ve *pkgerrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantMsg)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateUser_EmailExists(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(domain.NewWithCredentials("a@b.com", "x"), nil)

	resp, err := svc.CreateUser(ctx, CreateUserRequest{Email: "a@b.com", Password: "secret"})

	assert.Nil(t, resp)
	var ae *pkgerrors.AlreadyExistsError
	assert.ErrorAs(t, err, &ae)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_LookupFails(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, dbErr)

	_, err := svc.CreateUser(ctx, CreateUserRequest{Email: "a@b.com", Password: "secret"})

	assert.ErrorIs(t, err, dbErr)
}

// ==================== GET USER TESTS ====================

func TestGetUser_Success(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(domain.NewWithProfile("a@b.com", "Alice", "secret"), nil)

	resp, err := svc.GetUser(ctx, GetUserRequest{Email: "a@b.com"})

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.User.Email)
	require.NotNil(t, resp.User.Name)
	assert.Equal(t, "Alice", *resp.User.Name)
	assert.Equal(t, int64(0), resp.User.Token)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)

	resp, err := svc.GetUser(ctx, GetUserRequest{Email: "a@b.com"})

	assert.Nil(t, resp)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetUser_InvalidEmail(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.GetUser(context.Background(), GetUserRequest{Email: "nope"})

	var ve *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_PatchesOnlyGivenFields(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	stored := domain.NewUser(domain.StringPtr("a@b.com"), domain.StringPtr("Alice"), domain.StringPtr("secret"), 5)
	token := int64(1700000000000)
	want := domain.NewUser(domain.StringPtr("a@b.com"), domain.StringPtr("Alice"), domain.StringPtr("secret"), token)

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(stored, nil)
	mockRepo.On("Update", ctx, mock.MatchedBy(want.Equal)).Return(nil)

	resp, err := svc.UpdateUser(ctx, UpdateUserRequest{Email: "a@b.com", Token: &token})

	require.NoError(t, err)
	assert.Equal(t, token, resp.User.Token)
	assert.Equal(t, "Alice", *resp.User.Name)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_ClearsFields(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	stored := domain.NewUser(domain.StringPtr("a@b.com"), domain.StringPtr("Alice"), domain.StringPtr("secret"), 5)
	want := domain.NewUser(domain.StringPtr("a@b.com"), nil, nil, 5)

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(stored, nil)
	mockRepo.On("Update", ctx, mock.MatchedBy(want.Equal)).Return(nil)

	resp, err := svc.UpdateUser(ctx, UpdateUserRequest{Email: "a@b.com", Clear: []string{FieldName, FieldPassword}})

	require.NoError(t, err)
	assert.Nil(t, resp.User.Name)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_ClearValidation(t *testing.T) {
	tests := []struct {
		name string
		req  UpdateUserRequest
	}{
		{"unknown field", UpdateUserRequest{Email: "a@b.com", Clear: []string{"email"}}},
		{"set and clear name", UpdateUserRequest{Email: "a@b.com", Name: domain.StringPtr("Bob"), Clear: []string{FieldName}}},
		{"set and clear password", UpdateUserRequest{Email: "a@b.com", Password: domain.StringPtr("x"), Clear: []string{FieldPassword}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := setupTestService(t)

			_, err := svc.UpdateUser(context.Background(), tt.req)

			var ve *pkgerrors.ValidationError
			require.ErrorAs(t, err, &ve)
			mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
			mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)

	_, err := svc.UpdateUser(ctx, UpdateUserRequest{Email: "a@b.com", Name: domain.StringPtr("Bob")})

	assert.True(t, pkgerrors.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_RepoError(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()
	dbErr := errors.New("deadlock")

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(domain.NewWithCredentials("a@b.com", "p"), nil)
	mockRepo.On("Update", ctx, mock.Anything).Return(dbErr)

	_, err := svc.UpdateUser(ctx, UpdateUserRequest{Email: "a@b.com", Password: domain.StringPtr("new")})

	assert.ErrorIs(t, err, dbErr)
}

// ==================== DELETE USER TESTS ====================

func TestDeleteUser(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, "a@b.com").Return(nil)
	mockRepo.On("Delete", ctx, "gone@b.com").Return(pkgerrors.NewNotFoundError("user", "gone@b.com"))

	resp, err := svc.DeleteUser(ctx, DeleteUserRequest{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.Email)

	_, err = svc.DeleteUser(ctx, DeleteUserRequest{Email: "gone@b.com"})
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = svc.DeleteUser(ctx, DeleteUserRequest{})
	var ve *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

// ==================== LIST USERS TESTS ====================

func TestListUsers_Defaults(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	users := []*domain.User{
		domain.NewWithProfile("a@b.com", "Alice", "x"),
		domain.NewWithCredentials("c@d.com", "y"),
	}
	mockRepo.On("List", ctx, "", int64(1), int64(10)).Return(users, int64(12), nil)

	resp, err := svc.ListUsers(ctx, ListUsersRequest{})

	require.NoError(t, err)
	require.Len(t, resp.Users, 2)
	assert.Nil(t, resp.Users[1].Name)
	assert.Equal(t, &Pagination{Total: 12, Page: 1, Limit: 10, TotalPages: 2}, resp.Pagination)
}

func TestListUsers_ClampsLimit(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "alice", int64(3), int64(100)).Return([]*domain.User{}, int64(0), nil)

	resp, err := svc.ListUsers(ctx, ListUsersRequest{Query: "alice", Page: 3, Limit: 1000})

	require.NoError(t, err)
	assert.Empty(t, resp.Users)
	assert.Equal(t, int64(100), resp.Pagination.Limit)
}

func TestListUsers_PagePastTheEnd(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "", int64(math.MaxInt64), int64(10)).Return([]*domain.User{}, int64(3), nil)

	resp, err := svc.ListUsers(ctx, ListUsersRequest{Page: math.MaxInt64, Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, resp.Users)
	assert.Equal(t, &Pagination{Total: 3, Page: math.MaxInt64, Limit: 10, TotalPages: 1}, resp.Pagination)
}

func TestListUsers_InvalidQuery(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "a;b", int64(1), int64(10)).
		Return(nil, int64(0), fmt.Errorf("invalid search query: %w", security.ErrQueryInvalidChar))

	_, err := svc.ListUsers(ctx, ListUsersRequest{Query: "a;b"})

	var ve *pkgerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "query", ve.Field)
}
