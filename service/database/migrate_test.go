package database

import (
	"testing"

	"formhub-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试迁移与基础数据初始化的幂等性
func TestInitializeData(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, InitializeData(db))
	require.NoError(t, InitializeData(db))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleSuperAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsPrivileged())
	assert.True(t, admins[0].CheckPassword("admin123"))
	assert.NotEqual(t, "admin123", admins[0].Password)

	var typeCount int64
	require.NoError(t, db.Model(&models.DocumentType{}).Count(&typeCount).Error)
	assert.Equal(t, int64(3), typeCount)
}
