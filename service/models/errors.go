/*
 * @module service/models/errors
 * @description 统一错误分类定义，核心操作的失败均归入五类之一
 * @architecture 分层架构 - 错误模型
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 服务层产生 -> 控制器层映射为统一响应
 * @rules 校验错误需携带全部违规字段；存储错误不得静默吞掉
 * @dependencies fmt, strings
 * @refs api/controllers/response.go
 */

package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError 输入校验失败，携带全部违规字段
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError 创建空的校验错误收集器
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add 追加字段级错误信息
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors 是否收集到错误
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("数据校验失败: %s", strings.Join(names, ", "))
}

// NotFoundError 引用的表单或记录不存在
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s 不存在", e.Resource, e.ID)
}

// ConflictError slug冲突或存在数据后的非法变更
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// AuthorizationError 操作者缺少所需能力
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// StorageError 底层存储操作意外失败
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作失败 [%s]: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
