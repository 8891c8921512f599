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
	"gorm.io/gorm"
)

// RoleService manages security roles.
type RoleService interface {
	CreateRole(ctx context.Context, input *RoleInput) (*models.Role, error)
	UpdateRole(ctx context.Context, id uint, input *RoleInput) (*models.Role, error)
	DeleteRole(ctx context.Context, id uint) error
	GetRole(ctx context.Context, id uint) (*models.Role, error)
	ListRoles(ctx context.Context, includeInactive bool) ([]models.Role, error)
	// RolePermissions returns the names checked in the role.
	RolePermissions(ctx context.Context, id uint) ([]string, error)
}

// RoleInput is the role payload. Either Sections/Areas (stored ID lists)
// or Permissions (names) describe the selection; names win when both are
// present.
type RoleInput struct {
	Role        string   `json:"role" label:"Role Name" validate:"required,max=100"`
	Description string   `json:"description" label:"Description" validate:"max=255"`
	Sections    *string  `json:"sections"`
	Areas       *string  `json:"areas"`
	Inactive    bool     `json:"inactive"`
	Permissions []string `json:"permissions,omitempty"`
}

// RoleServiceOptions configures NewRoleService.
type RoleServiceOptions struct {
	// Strict rejects unknown permission names instead of dropping them.
	Strict  bool
	Cache   PermissionCache
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

type roleService struct {
	repo     repositories.RoleRepository
	registry *permissions.Registry
	strict   bool
	cache    PermissionCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

var _ RoleService = (*roleService)(nil)

func NewRoleService(repo repositories.RoleRepository, registry *permissions.Registry, opts RoleServiceOptions) RoleService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &roleService{
		repo:     repo,
		registry: registry,
		strict:   opts.Strict,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		logger:   logger.Named("roles"),
	}
}

func (s *roleService) CreateRole(ctx context.Context, input *RoleInput) (role *models.Role, err error) {
	defer func() { s.metrics.RoleMutation("create", err) }()

	sel, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByName(ctx, input.Role)
	if err == nil {
		return nil, ErrRoleExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking role name: %w", err)
	}

	role = &models.Role{
		Name:        input.Role,
		Description: input.Description,
		Sections:    nullable(sel.Sections),
		Areas:       nullable(sel.Areas),
		Inactive:    input.Inactive,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	s.logger.Info("Role created", zap.Uint("role_id", role.ID), zap.String("role", role.Name))
	return role, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id uint, input *RoleInput) (role *models.Role, err error) {
	defer func() { s.metrics.RoleMutation("update", err) }()

	sel, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	role, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.Name != input.Role {
		other, err := s.repo.FindByName(ctx, input.Role)
		if err == nil && other.ID != role.ID {
			return nil, ErrRoleExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("checking role name: %w", err)
		}
	}

	role.Name = input.Role
	role.Description = input.Description
	role.Sections = nullable(sel.Sections)
	role.Areas = nullable(sel.Areas)
	role.Inactive = input.Inactive
	if err := s.repo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to save role: %w", err)
	}

	s.invalidate(ctx, role.ID)
	s.logger.Info("Role updated", zap.Uint("role_id", role.ID), zap.String("role", role.Name))
	return role, nil
}

func (s *roleService) DeleteRole(ctx context.Context, id uint) (err error) {
	defer func() { s.metrics.RoleMutation("delete", err) }()

	role, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteIfUnused(ctx, role); err != nil {
		if errors.Is(err, repositories.ErrRoleHasUsers) {
			return ErrRoleInUse
		}
		return fmt.Errorf("failed to delete role: %w", err)
	}
	s.logger.Info("Role deleted", zap.Uint("role_id", id), zap.String("role", role.Name))
	return nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	return s.find(ctx, id)
}

func (s *roleService) ListRoles(ctx context.Context, includeInactive bool) ([]models.Role, error) {
	roles, err := s.repo.FindAll(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return roles, nil
}

func (s *roleService) RolePermissions(ctx context.Context, id uint) ([]string, error) {
	role, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.registry.Decode(role.StoredSections(), role.StoredAreas())
	if err != nil {
		return nil, fmt.Errorf("%w: role %d: %v", ErrPermissionsData, id, err)
	}
	return names, nil
}

func (s *roleService) find(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("loading role %d: %w", id, err)
	}
	return role, nil
}

// prepare normalizes and validates the input and resolves the selection
// to canonical stored lists.
func (s *roleService) prepare(input *RoleInput) (permissions.Selection, error) {
	if input == nil {
		return permissions.Selection{}, &ValidationError{Messages: []string{"Role Name is required"}}
	}
	input.Role = strings.TrimSpace(input.Role)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateStruct(input); err != nil {
		return permissions.Selection{}, err
	}

	if len(input.Permissions) > 0 {
		if s.strict {
			sel, err := s.registry.Encode(input.Permissions)
			if err != nil {
				return permissions.Selection{}, invalid(err)
			}
			return sel, nil
		}
		sel, dropped := s.registry.EncodeLenient(input.Permissions)
		if len(dropped) > 0 {
			s.logger.Warn("Dropped unknown permission names", zap.String("role", input.Role), zap.Strings("names", dropped))
		}
		return sel, nil
	}

	names, err := s.registry.Decode(deref(input.Sections), deref(input.Areas))
	if err != nil {
		return permissions.Selection{}, invalid(err)
	}
	sel, _ := s.registry.EncodeLenient(names)
	return sel, nil
}

func (s *roleService) invalidate(ctx context.Context, roleID uint) {
	if s.cache == nil {
		return
	}
	users, err := s.repo.UserIDs(ctx, roleID)
	if err != nil {
		s.logger.Warn("Could not list role users for cache invalidation", zap.Uint("role_id", roleID), zap.Error(err))
		return
	}
	if err := s.cache.Invalidate(ctx, users...); err != nil {
		s.logger.Warn("Permission cache invalidation failed", zap.Uint("role_id", roleID), zap.Error(err))
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
