/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移与各业务服务的装配
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保数据库迁移与基础数据初始化完成后才提供API服务
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs dev_docs/model.md
 */

package service

import (
	"fmt"
	"log"
	"os"

	"formhub-service/service/activity"
	"formhub-service/service/database"
	"formhub-service/service/form"
	"formhub-service/service/notification"
	"formhub-service/service/permission"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                      *gorm.DB
	GlobalProvisioner       *database.TableProvisioner
	GlobalFormService       *form.Service
	GlobalRecordService     *form.RecordService
	GlobalReviewService     *form.ReviewService
	GlobalPermissionService *permission.Service
	GlobalActivityLogger    *activity.Logger
	GlobalReminderService   *notification.ReminderService
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "formhub2024")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
	log.Println("基础数据初始化完成")
}

// initServices 初始化服务
func initServices() {
	GlobalProvisioner = database.NewTableProvisioner(DB)
	GlobalActivityLogger = activity.NewLogger(DB)
	GlobalFormService = form.NewService(DB, GlobalProvisioner)
	GlobalRecordService = form.NewRecordService(DB, GlobalActivityLogger)
	GlobalReviewService = form.NewReviewService(DB, GlobalRecordService, GlobalActivityLogger)
	GlobalPermissionService = permission.NewService(DB)
	GlobalReminderService = notification.NewReminderService(DB, GlobalPermissionService, nil)

	// 启动填报提醒调度
	if err := GlobalReminderService.Start(); err != nil {
		log.Printf("启动填报提醒调度失败: %v", err)
	}

	log.Println("服务初始化完成")
}
