package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"erp-access/config"
	"erp-access/models"
	"erp-access/permissions"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dsn := cfg.DSN
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	// GORM logger configuration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Keep hashes out of the log
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY on concurrent writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate creates or updates the access tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Role{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// AdminRoleName is the seeded role holding every permission.
const AdminRoleName = "System Administrator"

// SeedInitialData creates the default roles and the initial admin user if
// they do not exist yet. Existing rows are left untouched.
func SeedInitialData(db *gorm.DB, registry *permissions.Registry, adminPassword string, logger *zap.Logger) error {
	var all, inquiry []string
	for _, p := range registry.All() {
		all = append(all, p.Name)
		// Inquiry role: every section plus the read-only views and reports.
		if p.IsSection() || strings.HasSuffix(p.Code, "VIEW") || strings.HasSuffix(p.Code, "REP") || strings.HasSuffix(p.Code, "ANALYTIC") {
			inquiry = append(inquiry, p.Name)
		}
	}

	roles := []struct {
		Name        string
		Description string
		Permissions []string
	}{
		{Name: AdminRoleName, Description: "System Administrator", Permissions: all},
		{Name: "Inquiries", Description: "Inquiries", Permissions: inquiry},
	}

	var adminRole models.Role
	for _, rData := range roles {
		var existing models.Role
		err := db.Where("name = ?", rData.Name).First(&existing).Error
		if err == nil {
			if rData.Name == AdminRoleName {
				adminRole = existing
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("checking role %s: %w", rData.Name, err)
		}

		sel, err := registry.Encode(rData.Permissions)
		if err != nil {
			return fmt.Errorf("encoding role %s: %w", rData.Name, err)
		}
		role := models.Role{
			Name:        rData.Name,
			Description: rData.Description,
			Sections:    nullable(sel.Sections),
			Areas:       nullable(sel.Areas),
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("seeding role %s: %w", rData.Name, err)
		}
		logger.Info("Seeded role", zap.String("role", role.Name), zap.Int("permissions", len(rData.Permissions)))
		if rData.Name == AdminRoleName {
			adminRole = role
		}
	}

	var adminUser models.User
	err := db.Where("username = ?", "admin").First(&adminUser).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking admin user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	adminUser = models.User{
		Username: "admin",
		Password: string(hashedPassword),
		Email:    "admin@example.com",
		RealName: "Administrator",
		RoleID:   &adminRole.ID,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	logger.Info("Created initial admin user", zap.String("role", adminRole.Name))
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
