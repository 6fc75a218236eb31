/*
 * @module service/models/form
 * @description 动态表单相关模型定义，包括表单元数据、文档类型及请求结构
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 表单创建 -> 物理表建表 -> 元数据落库 -> 记录操作
 * @rules slug全局唯一；物理表名全局唯一且删除后不复用；列配置创建后不可修改
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/database/provisioner.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 记录审批状态枚举
const (
	RecordStatusDraft    = "draft"
	RecordStatusInReview = "in_review"
	RecordStatusApproved = "approved"
	RecordStatusReturned = "returned"
)

// RecordStatuses 记录的全部合法状态
var RecordStatuses = []string{
	RecordStatusDraft,
	RecordStatusInReview,
	RecordStatusApproved,
	RecordStatusReturned,
}

// ReviewTargetStatuses 审批操作允许的目标状态
var ReviewTargetStatuses = []string{
	RecordStatusApproved,
	RecordStatusReturned,
}

// DynamicForm 动态表单模型，每个表单对应一张物理表
type DynamicForm struct {
	ID                    string         `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name                  string         `json:"name" gorm:"not null;size:255" example:"每日血库登记"`
	Slug                  string         `json:"slug" gorm:"not null;unique;size:255" example:"daily-log"`
	TableName             string         `json:"table_name" gorm:"not null;unique;size:255" example:"form_daily_log_1736400000"`
	ColumnsConfig         ColumnSpecList `json:"columns_config" gorm:"type:jsonb;not null"`
	DocumentTypeID        *string        `json:"document_type_id" gorm:"type:varchar(36);index"`
	IsNotificationEnabled bool           `json:"is_notification_enabled" gorm:"not null;default:false"`
	NotificationTime      *string        `json:"notification_time" gorm:"size:5"` // HH:MM
	CreatedBy             *string        `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt             time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	// 关联关系
	DocumentType    *DocumentType            `json:"document_type,omitempty" gorm:"foreignKey:DocumentTypeID"`
	UserPermissions []UserDocumentPermission `json:"user_permissions,omitempty" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (f *DynamicForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// DocumentType 文档类型模型，表单的业务归类
type DocumentType struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"not null;unique;size:255" example:"温控记录"`
	Description string    `json:"description" gorm:"size:1000"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (d *DocumentType) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// CreateFormRequest 创建表单请求
type CreateFormRequest struct {
	Name                  string         `json:"name" validate:"required" example:"每日血库登记"`
	Slug                  string         `json:"slug" validate:"required" example:"daily-log"`
	Columns               ColumnSpecList `json:"columns" validate:"required"`
	DocumentTypeID        *string        `json:"document_type_id,omitempty"`
	IsNotificationEnabled bool           `json:"is_notification_enabled"`
	NotificationTime      *string        `json:"notification_time,omitempty" example:"08:30"`
}

// UpdateFormRequest 更新表单请求，仅允许元数据字段
type UpdateFormRequest struct {
	Name                  *string `json:"name,omitempty"`
	Slug                  *string `json:"slug,omitempty"`
	DocumentTypeID        *string `json:"document_type_id,omitempty"`
	IsNotificationEnabled *bool   `json:"is_notification_enabled,omitempty"`
	NotificationTime      *string `json:"notification_time,omitempty"`
}

// ReviewRequest 记录审批请求
type ReviewRequest struct {
	Status   string `json:"status" validate:"required" example:"approved"` // approved, returned
	Comments string `json:"comments" example:"数据完整，通过"`
}

// Record 动态表记录，列名到值的通用映射
type Record map[string]interface{}
