/*
 * @module service/models/permission
 * @description 用户文档权限模型及归一化能力决策结构
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 权限由管理端分配，记录操作前统一解析为能力决策
 * @rules (user_id, document_id) 唯一；父级用户或表单删除时级联删除
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/permission/service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDocumentPermission 用户对单个表单的权限授予
type UserDocumentPermission struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"user_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_user_document"`
	DocumentID string    `json:"document_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_user_document"`
	CanView    bool      `json:"can_view" gorm:"not null;default:true"`
	CanEdit    bool      `json:"can_edit" gorm:"not null;default:false"`
	CanDelete  bool      `json:"can_delete" gorm:"not null;default:false"`
	CanReview  bool      `json:"can_review" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	// 关联关系
	User     *User        `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Document *DynamicForm `json:"document,omitempty" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (p *UserDocumentPermission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PermissionDecision 归一化能力决策，网关与审批状态机统一消费
type PermissionDecision struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanReview bool `json:"can_review"`
	IsAdmin   bool `json:"is_admin"` // 最高权限角色，全量放行
}

// Allows 判断决策是否允许指定能力
func (d PermissionDecision) Allows(capability string) bool {
	if d.IsAdmin {
		return true
	}
	switch capability {
	case "view":
		return d.CanView
	case "edit":
		return d.CanEdit
	case "delete":
		return d.CanDelete
	case "review":
		return d.CanReview
	default:
		return false
	}
}

// AccessibleDocument 用户可访问的表单及其能力快照
type AccessibleDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CanView   bool   `json:"can_view"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
	CanReview bool   `json:"can_review"`
	IsAdmin   bool   `json:"is_admin"`
}
