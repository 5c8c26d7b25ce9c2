package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/pkg/crypto"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

// ErrUserNotFound indicates the referenced user does not exist.
var ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", 404)

// ErrUserDisabled indicates the account exists but has been deactivated.
var ErrUserDisabled = apperrors.New("USER_DISABLED", "Account is disabled", 403)

// CreateUserInput describes a new account. Setting Organization registers the
// user as a business owner of that organization.
type CreateUserInput struct {
	Username     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Organization string
}

// UpdateUserInput carries optional profile changes.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

// UserListOptions controls pagination for user listings.
type UserListOptions struct {
	Page     int
	PageSize int
	Search   string
}

// UserService manages account registration, lookup and authentication.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
	now   func() time.Time
}

// UserOption customises UserService construction.
type UserOption func(*UserService)

// WithUserClock overrides the time source, mainly for tests.
func WithUserClock(clock func() time.Time) UserOption {
	return func(s *UserService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, audit *AuditService, opts ...UserOption) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	svc := &UserService{db: db, audit: audit, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create registers a new account. Business owners are seeded with the
// business_owner role; everyone else starts as an unaffiliated member.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := normaliseEmail(input.Email)
	if username == "" {
		return nil, apperrors.NewBadRequest("Username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("Password must be at least 8 characters")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		IsActive:  true,
	}

	roleID := models.RoleMember
	if organization := strings.TrimSpace(input.Organization); organization != "" {
		user.Organization = &organization
		roleID = models.RoleBusinessOwner
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.ErrConflict.WithMessage("Username or email is already in use")
			}
			return fmt.Errorf("user service: create user: %w", err)
		}

		var role models.Role
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			return fmt.Errorf("user service: load role %s: %w", roleID, err)
		}
		if err := tx.Model(&user).Association("Roles").Append(&role); err != nil {
			return fmt.Errorf("user service: assign role: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &user.ID,
		Username: user.Username,
		Action:   "user.register",
		Resource: "user:" + user.ID,
		Result:   "success",
		Metadata: map[string]any{"role": roleID},
	})

	return &user, nil
}

// GetByID loads a user together with its roles.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return loadUserWithRoles(ensureContext(ctx), s.db, id)
}

// GetByEmail loads a user by normalized email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user by email: %w", err)
	}
	return &user, nil
}

// List returns paginated users, optionally filtered by a search term matching
// username or email.
func (s *UserService) List(ctx context.Context, opts UserListOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Preload("Roles").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// UpdateProfile applies partial profile changes for the user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*input.Avatar)
	}
	if len(updates) == 0 {
		return loadUserWithRoles(ctx, s.db, id)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("user service: update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return loadUserWithRoles(ctx, s.db, id)
}

// Deactivate disables the account. Disabled accounts cannot authenticate.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("user service: deactivate user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &id,
		Action:   "user.deactivate",
		Resource: "user:" + id,
		Result:   "success",
	})
	return nil
}

// Authenticate verifies the credentials and stamps the last login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user for auth: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp last login: %w", err)
	}
	user.LastLoginAt = &now

	return &user, nil
}

// loadUserWithRoles is the shared user lookup used across lifecycle services.
func loadUserWithRoles(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	return &user, nil
}
