/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新注册表结构并初始化基础数据
 * @architecture 数据访问层 - 迁移管理
 * @documentReference dev_docs/model.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 仅迁移元数据表；表单的物理表由供给器在运行时创建
 * @dependencies formhub-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"log"

	"formhub-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 用户与权限相关表
	err := db.AutoMigrate(
		&models.User{},
		&models.DocumentType{},
		&models.DynamicForm{},
		&models.UserDocumentPermission{},
	)
	if err != nil {
		return err
	}

	// 操作日志表
	err = db.AutoMigrate(
		&models.ActivityLog{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据
func InitializeData(db *gorm.DB) error {
	if err := seedSuperAdmin(db); err != nil {
		return err
	}
	return seedDocumentTypes(db)
}

// seedSuperAdmin 初始化超级管理员账号
func seedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Name:  "超级管理员",
		Email: "admin@bloodbank.local",
		Role:  models.RoleSuperAdmin,
	}
	if err := admin.SetPassword("admin123"); err != nil {
		return err
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("超级管理员账号初始化完成: %s", admin.Email)
	return nil
}

// seedDocumentTypes 初始化文档类型基础数据
func seedDocumentTypes(db *gorm.DB) error {
	defaults := []models.DocumentType{
		{Name: "温控记录", Description: "血库冷链设备温度监控记录"},
		{Name: "库存登记", Description: "血液制品出入库登记"},
		{Name: "质控检查", Description: "日常质量控制检查表"},
	}

	for _, docType := range defaults {
		var count int64
		if err := db.Model(&models.DocumentType{}).Where("name = ?", docType.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&docType).Error; err != nil {
			return err
		}
	}

	return nil
}
