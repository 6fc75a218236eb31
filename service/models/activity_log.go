/*
 * @module service/models/activity_log
 * @description 操作日志模型，记录表单与记录的变更事件
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 核心操作成功后异步写入，写入失败不影响原操作
 * @rules action 仅为 created/updated/deleted 三种
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/activity/logger.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 操作日志动作枚举
const (
	ActivityActionCreated = "created"
	ActivityActionUpdated = "updated"
	ActivityActionDeleted = "deleted"
)

// ActivityLog 操作日志
type ActivityLog struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"not null;type:varchar(36);index"`
	Action      string    `json:"action" gorm:"not null;size:20"` // created, updated, deleted
	Description string    `json:"description" gorm:"size:1000"`
	SubjectType string    `json:"subject_type" gorm:"size:100"`
	SubjectID   string    `json:"subject_id" gorm:"size:36;index"`
	IPAddress   string    `json:"ip_address" gorm:"size:45"`
	UserAgent   string    `json:"user_agent" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
