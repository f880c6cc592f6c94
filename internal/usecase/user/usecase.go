package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-entity-service/internal/domain/user"
	pkgerrors "user-entity-service/pkg/errors"
	"user-entity-service/pkg/logger"
	"user-entity-service/pkg/security"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Repository defines the interface for user data access operations.
// GetByEmail returns (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, email string) error
	List(ctx context.Context, query string, page, limit int64) ([]*domain.User, int64, error)
}

// Service implements Usecase on top of a Repository. Request validation
// happens here; the entity itself accepts any value.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	field := ""
	if len(validationErrors) == 1 {
		field = validationErrors[0].Field()
	}
	return pkgerrors.NewValidationError(field, strings.Join(messages, ", "))
}

// CreateUser stores a new user keyed by email.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, pkgerrors.NewAlreadyExistsError("user", in.Email)
	}

	if err := s.repo.Create(ctx, newEntity(in)); err != nil {
		log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	return &CreateUserResponse{Email: in.Email}, nil
}

// newEntity picks the narrowest constructor for the fields the caller sent.
func newEntity(in CreateUserRequest) *domain.User {
	switch {
	case in.Token != 0:
		return domain.NewUser(&in.Email, in.Name, &in.Password, in.Token)
	case in.Name != nil:
		return domain.NewWithProfile(in.Email, *in.Name, in.Password)
	default:
		return domain.NewWithCredentials(in.Email, in.Password)
	}
}

// UpdateUser applies the non-nil request fields to the stored user and resets
// the cleared ones to absent.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	clearName := slices.Contains(in.Clear, FieldName)
	clearPassword := slices.Contains(in.Clear, FieldPassword)
	if (clearName && in.Name != nil) || (clearPassword && in.Password != nil) {
		log.Warn("update sets and clears the same field", zap.Strings("clear", in.Clear))
		return nil, pkgerrors.NewValidationError("clear", "a field cannot be both set and cleared")
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to load user for update", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if u == nil {
		return nil, pkgerrors.NewNotFoundError("user", in.Email)
	}

	if in.Name != nil {
		u.SetName(in.Name)
	}
	if in.Password != nil {
		u.SetPassword(in.Password)
	}
	if in.Token != nil {
		u.SetToken(*in.Token)
	}
	if clearName {
		u.SetName(nil)
	}
	if clearPassword {
		u.SetPassword(nil)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		log.Error("failed to update user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	return &UpdateUserResponse{User: toDTO(u)}, nil
}

// DeleteUser removes the user with the given email.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := s.repo.Delete(ctx, in.Email); err != nil {
		log.Error("failed to delete user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	return &DeleteUserResponse{Email: in.Email}, nil
}

// GetUser fetches one user by email.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to get user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if u == nil {
		return nil, pkgerrors.NewNotFoundError("user", in.Email)
	}

	return &GetUserResponse{User: toDTO(u)}, nil
}

// ListUsers returns one page of users matching the optional query.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageLimit
	}
	if in.Limit > maxPageLimit {
		in.Limit = maxPageLimit
	}

	log := logger.WithContext(ctx, s.log)
	log.Info("listing users", zap.String("query", in.Query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	users, total, err := s.repo.List(ctx, in.Query, in.Page, in.Limit)
	if err != nil {
		if errors.Is(err, security.ErrQueryTooLong) || errors.Is(err, security.ErrQueryInvalidChar) {
			log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
			return nil, pkgerrors.NewValidationError("query", err.Error())
		}
		log.Error("failed to list users", zap.String("query", in.Query), zap.Error(err))
		return nil, err
	}

	out := make([]User, len(users))
	for i, u := range users {
		out[i] = toDTO(u)
	}

	p := domain.NewPagination(total, in.Page, in.Limit)
	return &ListUsersResponse{
		Users: out,
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}

func toDTO(u *domain.User) User {
	return User{
		Email: u.EmailValue(),
		Name:  u.Name(),
		Token: u.Token(),
	}
}
