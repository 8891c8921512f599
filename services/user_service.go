package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"erp-access/metrics"
	"erp-access/models"
	"erp-access/permissions"
	"erp-access/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ManageUsers is the permission required to administer other accounts.
const ManageUsers = "SA_USERS"

// The UserService interface defines the methods that user services need to implement
type UserService interface {
	CreateUser(ctx context.Context, input *CreateUserInput, requestingUserID uint) (*models.User, error)
	GetUserByID(ctx context.Context, userID uint, requestingUserID uint) (*models.User, error)
	UpdateUser(ctx context.Context, userID uint, requestingUserID uint, input *UpdateUserInput) (*models.User, error)
	ListUsers(ctx context.Context, page int, pageSize int, requestingUserID uint) ([]models.User, int64, error)
	DeleteUser(ctx context.Context, userID uint, requestingUserID uint) error
	AssignRole(ctx context.Context, userID uint, roleID *uint, requestingUserID uint) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	CurrentUser(ctx context.Context, userID uint) (*CurrentUser, error)
	// Permissions resolves the permission object of a user. Users without
	// an active role get an empty object.
	Permissions(ctx context.Context, userID uint) (permissions.Set, error)
}

// --- Structs for Input/Output ---
type CreateUserInput struct {
	Username string `json:"username" label:"Username" validate:"required,max=60"`
	Password string `json:"password" label:"Password" validate:"required,min=6"`
	Email    string `json:"email" label:"Email" validate:"omitempty,email"`
	RealName string `json:"real_name" label:"Full Name" validate:"max=100"`
	RoleID   *uint  `json:"role_id"`
}

type UpdateUserInput struct {
	// Pointers distinguish "not provided" from empty.
	Email    *string `json:"email" label:"Email" validate:"omitempty,email"`
	RealName *string `json:"real_name" label:"Full Name" validate:"omitempty,max=100"`
	Password *string `json:"password" label:"Password" validate:"omitempty,min=6"`
	Inactive *bool   `json:"inactive"`
}

// CurrentUser is the session view of the logged-in user.
type CurrentUser struct {
	User        *models.User
	Permissions permissions.Set
}

type userService struct {
	repo     repositories.UserRepository
	roles    repositories.RoleRepository
	registry *permissions.Registry
	cache    PermissionCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance. cache may be nil.
func NewUserService(repo repositories.UserRepository, roles repositories.RoleRepository, registry *permissions.Registry, cache PermissionCache, m *metrics.Metrics, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		repo:     repo,
		roles:    roles,
		registry: registry,
		cache:    cache,
		metrics:  m,
		logger:   logger.Named("users"),
	}
}

// CreateUser adds an account. Requires SA_USERS.
func (s *userService) CreateUser(ctx context.Context, input *CreateUserInput, requestingUserID uint) (*models.User, error) {
	if err := s.require(ctx, requestingUserID, ManageUsers); err != nil {
		return nil, err
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if err := s.checkEmail(ctx, input.Email, 0); err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, input.RoleID); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := models.User{
		Username: input.Username,
		Password: string(hashedPassword),
		Email:    input.Email,
		RealName: input.RealName,
		RoleID:   input.RoleID,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.repo.FindByID(ctx, user.ID)
}

// GetUserByID: own profile, or any profile with SA_USERS.
func (s *userService) GetUserByID(ctx context.Context, targetUserID uint, requestingUserID uint) (*models.User, error) {
	if targetUserID != requestingUserID {
		if err := s.require(ctx, requestingUserID, ManageUsers); err != nil {
			return nil, err
		}
	}
	return s.find(ctx, targetUserID)
}

// UpdateUser: own profile, or any profile with SA_USERS. Only
// administrators can change the inactive flag.
func (s *userService) UpdateUser(ctx context.Context, targetUserID uint, requestingUserID uint, input *UpdateUserInput) (*models.User, error) {
	isSelf := targetUserID == requestingUserID
	if !isSelf || input.Inactive != nil {
		if err := s.require(ctx, requestingUserID, ManageUsers); err != nil {
			return nil, err
		}
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	needsSave := false
	if input.Email != nil && user.Email != *input.Email {
		if err := s.checkEmail(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *input.Email
		needsSave = true
	}
	if input.RealName != nil && user.RealName != *input.RealName {
		user.RealName = *input.RealName
		needsSave = true
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("could not hash new password: %w", err)
		}
		user.Password = string(hashedPassword)
		needsSave = true
	}
	if input.Inactive != nil && user.Inactive != *input.Inactive {
		user.Inactive = *input.Inactive
		needsSave = true
	}

	if needsSave {
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to save user updates: %w", err)
		}
		s.forget(ctx, user.ID)
	}
	return s.find(ctx, user.ID)
}

// ListUsers requires SA_USERS.
func (s *userService) ListUsers(ctx context.Context, page int, pageSize int, requestingUserID uint) ([]models.User, int64, error) {
	if err := s.require(ctx, requestingUserID, ManageUsers); err != nil {
		return nil, 0, err
	}
	users, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	return users, total, nil
}

// DeleteUser requires SA_USERS. Administrators cannot delete themselves.
func (s *userService) DeleteUser(ctx context.Context, userID uint, requestingUserID uint) error {
	if err := s.require(ctx, requestingUserID, ManageUsers); err != nil {
		return err
	}
	if userID == requestingUserID {
		return fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.forget(ctx, userID)
	return nil
}

// AssignRole sets or clears (roleID == nil) the user's security role.
func (s *userService) AssignRole(ctx context.Context, userID uint, roleID *uint, requestingUserID uint) (*models.User, error) {
	if err := s.require(ctx, requestingUserID, ManageUsers); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, roleID); err != nil {
		return nil, err
	}
	user.RoleID = roleID
	user.Role = nil
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	s.forget(ctx, userID)
	return s.find(ctx, userID)
}

// Authenticate checks a username/password pair. Unknown users, wrong
// passwords and inactive accounts all yield ErrInvalidLogin.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}
	if user.Inactive {
		return nil, ErrInvalidLogin
	}
	return user, nil
}

func (s *userService) CurrentUser(ctx context.Context, userID uint) (*CurrentUser, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.Permissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CurrentUser{User: user, Permissions: perms}, nil
}

func (s *userService) Permissions(ctx context.Context, userID uint) (permissions.Set, error) {
	var (
		gen       uint64
		cacheable bool
	)
	if s.cache != nil {
		perms, g, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("Permission cache read failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		s.metrics.CacheLookup(ok)
		if ok {
			return perms, nil
		}
		gen, cacheable = g, err == nil
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms := permissions.Set{}
	if !user.Inactive && user.Role != nil && !user.Role.Inactive {
		perms, err = s.registry.CodesFor(user.Role.StoredSections(), user.Role.StoredAreas())
		if err != nil {
			return nil, fmt.Errorf("%w: role %d: %v", ErrPermissionsData, user.Role.ID, err)
		}
	}

	if cacheable {
		if err := s.cache.Set(ctx, userID, gen, perms); err != nil {
			s.logger.Warn("Permission cache write failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return perms, nil
}

func (s *userService) require(ctx context.Context, userID uint, code string) error {
	perms, err := s.Permissions(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("checking permissions: %w", err)
	}
	if !perms.Has(code) {
		return fmt.Errorf("%w: %s permission required", ErrForbidden, code)
	}
	return nil
}

func (s *userService) find(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	return user, nil
}

func (s *userService) checkEmail(ctx context.Context, email string, selfID uint) error {
	if email == "" {
		return nil
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing.ID != selfID {
		return ErrEmailInUse
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking email uniqueness: %w", err)
	}
	return nil
}

func (s *userService) checkRole(ctx context.Context, roleID *uint) error {
	if roleID == nil {
		return nil
	}
	if _, err := s.roles.FindByID(ctx, *roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("loading role %d: %w", *roleID, err)
	}
	return nil
}

func (s *userService) forget(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("Permission cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
