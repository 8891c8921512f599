package repositories

import (
	"context"
	"errors"

	"erp-access/models"

	"gorm.io/gorm"
)

// ErrRoleHasUsers is returned by DeleteIfUnused while a live user holds the role.
var ErrRoleHasUsers = errors.New("role has users")

// RoleRepository persists security roles.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	// DeleteIfUnused removes the role unless a live user holds it.
	DeleteIfUnused(ctx context.Context, role *models.Role) error
	FindAll(ctx context.Context, includeInactive bool) ([]models.Role, error)
	// UserIDs lists the users assigned to the role, soft-deleted ones
	// included. It drives cache invalidation only.
	UserIDs(ctx context.Context, roleID uint) ([]uint, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Update writes every column, including NULL sections or areas.
func (r *roleRepository) Update(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// DeleteIfUnused removes the role permanently so its name can be reused.
// Soft-deleted users still pointing at it are detached in the same
// transaction; live holders make it fail with ErrRoleHasUsers.
func (r *roleRepository) DeleteIfUnused(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return ErrRoleHasUsers
		}
		if err := tx.Unscoped().Model(&models.User{}).
			Where("role_id = ? AND deleted_at IS NOT NULL", role.ID).
			Update("role_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(role).Error
	})
}

func (r *roleRepository) FindAll(ctx context.Context, includeInactive bool) ([]models.Role, error) {
	var roles []models.Role
	q := r.db.WithContext(ctx).Order("name")
	if !includeInactive {
		q = q.Where("inactive = ?", false)
	}
	if err := q.Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) UserIDs(ctx context.Context, roleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("role_id = ?", roleID).Pluck("id", &ids).Error
	return ids, err
}
