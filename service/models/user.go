/*
 * @module service/models/user
 * @description 用户模型定义，包含角色与密码散列
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 用户由管理端维护，服务本身不处理登录会话
 * @rules 密码仅存bcrypt散列；admin与super-admin角色拥有全量文档权限
 * @dependencies gorm.io/gorm, github.com/google/uuid, golang.org/x/crypto/bcrypt
 * @refs service/permission/service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户角色枚举
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// User 用户模型
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Email     string    `json:"email" gorm:"not null;unique;size:255"`
	Password  string    `json:"-" gorm:"not null;size:255"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Role      string    `json:"role" gorm:"not null;default:'user';size:20"` // user, admin, super-admin
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	// 关联关系
	DocumentPermissions []UserDocumentPermission `json:"document_permissions,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// IsPrivileged 是否为最高权限角色，对所有文档全量放行
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// SetPassword 设置bcrypt散列密码
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword 校验明文密码
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
