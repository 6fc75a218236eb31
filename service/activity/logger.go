/*
 * @module service/activity/logger
 * @description 操作日志服务，记录核心操作的变更事件
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 核心操作成功 -> 日志写入 -> 写入失败仅记录内部日志
 * @rules 操作者身份显式传入，不读取任何全局状态；未认证操作跳过记录；日志写入失败不影响原操作
 * @dependencies formhub-service/service/models, gorm.io/gorm
 * @refs service/form/record_service.go
 */

package activity

import (
	"log"

	"formhub-service/service/models"

	"gorm.io/gorm"
)

// SubjectTypeDynamicForm 表单主体类型标识
const SubjectTypeDynamicForm = "dynamic_form"

// Actor 操作者身份及请求来源信息
type Actor struct {
	ID        string
	IPAddress string
	UserAgent string
}

// Logger 操作日志服务
type Logger struct {
	db *gorm.DB
}

// NewLogger 创建操作日志服务实例
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// Log 记录一条操作日志
// 未认证操作者直接跳过；写入失败只记录内部日志，不向调用方传播
func (l *Logger) Log(actor Actor, action, description string, form *models.DynamicForm) {
	if actor.ID == "" {
		return
	}

	entry := &models.ActivityLog{
		UserID:      actor.ID,
		Action:      action,
		Description: description,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	}
	if form != nil {
		entry.SubjectType = SubjectTypeDynamicForm
		entry.SubjectID = form.ID
	}

	if err := l.db.Create(entry).Error; err != nil {
		log.Printf("[ERROR] 操作日志写入失败: action=%s, actor=%s, err=%v", action, actor.ID, err)
	}
}

// ListRecent 查询最近的操作日志
func (l *Logger) ListRecent(limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []models.ActivityLog
	err := l.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
