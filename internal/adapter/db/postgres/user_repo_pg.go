package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-entity-service/internal/domain/user"
	pkgerrors "user-entity-service/pkg/errors"
	"user-entity-service/pkg/security"
)

// UserRepoPG implements the user Repository with GORM. It runs against
// PostgreSQL in production and SQLite in tests.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema is the users table row. Nullable columns map to pointers so an
// absent name or password survives a round trip.
type UserSchema struct {
	Email    string  `gorm:"primaryKey;type:varchar(64)"`
	Name     *string `gorm:"type:varchar(64);index:idx_users_name"`
	Password *string `gorm:"type:varchar(64)"`
	Token    int64   `gorm:"not null;default:0"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		Email:    u.EmailValue(),
		Name:     u.Name(),
		Password: u.Password(),
		Token:    u.Token(),
	}
}

func (m UserSchema) toDomain() *user.User {
	email := m.Email
	return user.NewUser(&email, m.Name, m.Password, m.Token)
}

// AutoMigrate creates or updates the users table.
func (r *UserRepoPG) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Create inserts a new user. The email is the primary key and must be present.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}
	if u.Email() == nil {
		return pkgerrors.NewValidationError("email", "primary key must be present")
	}

	model := toSchema(u)
	// Select("*") writes the zero token explicitly instead of deferring to the column default.
	if err := r.db.WithContext(ctx).Select("*").Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.NewAlreadyExistsError("user", model.Email)
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", model.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("email", model.Email))
	return nil
}

// Update overwrites every column of an existing row.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}
	if u.Email() == nil {
		return pkgerrors.NewValidationError("email", "primary key must be present")
	}

	model := toSchema(u)
	res := r.db.WithContext(ctx).Model(&UserSchema{}).
		Where("email = ?", model.Email).
		Select("name", "password", "token").
		Updates(&model)
	if res.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.String("email", model.Email))
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("user", model.Email)
	}

	r.log.Info("user updated in db", zap.String("email", model.Email))
	return nil
}

// Delete removes a user by email.
func (r *UserRepoPG) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&UserSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.String("email", email))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("user", email)
	}

	r.log.Info("user deleted in db", zap.String("email", email))
	return nil
}

// GetByEmail returns (nil, nil) when no user has the email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List returns one page of users whose email or name contains query, ordered
// by email, plus the total number of matches.
func (r *UserRepoPG) List(ctx context.Context, query string, page, limit int64) ([]*user.User, int64, error) {
	if page < 1 || limit < 1 {
		return nil, 0, fmt.Errorf("invalid pagination: page %d, limit %d", page, limit)
	}

	validQuery, err := security.ValidateSearchQuery(query)
	if err != nil {
		r.log.Warn("invalid search query", zap.String("query", query), zap.Error(err))
		return nil, 0, fmt.Errorf("invalid search query: %w", err)
	}

	search := func(db *gorm.DB) *gorm.DB {
		if validQuery == "" {
			return db
		}
		pattern := "%" + security.SanitizeSearchString(validQuery) + "%"
		return db.Where(`email LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Scopes(search).Count(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err), zap.String("query", validQuery))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	// Pages past the last one are empty. Checking against the page count
	// first keeps (page-1)*limit below total, so the offset cannot overflow.
	if page > pageCount(total, limit) {
		return []*user.User{}, total, nil
	}

	var models []UserSchema
	err = r.db.WithContext(ctx).Scopes(search).
		Order("email").
		Offset(int((page - 1) * limit)).
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", validQuery), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}

	return users, total, nil
}

func pageCount(total, limit int64) int64 {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
