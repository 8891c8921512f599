package database

import (
	"testing"

	"erp-access/config"
	"erp-access/models"
	"erp-access/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	reg := permissions.Default()
	require.NoError(t, SeedInitialData(db, reg, "secret", zap.NewNop()))
	require.NoError(t, SeedInitialData(db, reg, "other", zap.NewNop()))

	var roleCount, userCount int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 2, roleCount)
	assert.EqualValues(t, 1, userCount)

	var admin models.User
	require.NoError(t, db.Preload("Role").Where("username = ?", "admin").First(&admin).Error)
	require.NotNil(t, admin.Role)
	assert.Equal(t, AdminRoleName, admin.Role.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("secret")))

	names, err := reg.Decode(admin.Role.StoredSections(), admin.Role.StoredAreas())
	require.NoError(t, err)
	assert.Len(t, names, reg.Len())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
