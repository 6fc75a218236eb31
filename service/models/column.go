/*
 * @module service/models/column
 * @description 动态表单列配置模型，定义用户自定义字段及其JSONB存储类型
 * @architecture DDD领域驱动设计 - 值对象
 * @documentReference dev_docs/model.md
 * @stateFlow 表单创建时写入，记录操作时读取用于规则合成
 * @rules 列配置在表单创建后不可变更
 * @dependencies database/sql/driver, encoding/json
 * @refs service/models/form.go
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 语义列类型枚举
const (
	ColumnTypeString   = "string"
	ColumnTypeText     = "text"
	ColumnTypeNumber   = "number"
	ColumnTypeDecimal  = "decimal"
	ColumnTypeDate     = "date"
	ColumnTypeDatetime = "datetime"
	ColumnTypeBoolean  = "boolean"
	ColumnTypeEnum     = "enum"
)

// SemanticColumnTypes 支持的语义列类型集合
var SemanticColumnTypes = []string{
	ColumnTypeString,
	ColumnTypeText,
	ColumnTypeNumber,
	ColumnTypeDecimal,
	ColumnTypeDate,
	ColumnTypeDatetime,
	ColumnTypeBoolean,
	ColumnTypeEnum,
}

// ColumnSpec 表单列定义
type ColumnSpec struct {
	Name        string   `json:"name" example:"temp"`
	Type        string   `json:"type" example:"decimal"` // string, text, number, decimal, date, datetime, boolean, enum
	Label       string   `json:"label" example:"温度"`
	Required    bool     `json:"required" example:"true"`
	Options     []string `json:"options,omitempty"` // 仅enum类型使用
	MaxLength   int      `json:"max_length,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"help_text,omitempty"`
}

// ColumnSpecList 列配置列表，按声明顺序存储为 JSONB
type ColumnSpecList []ColumnSpec

// 实现 Scanner 接口
func (c *ColumnSpecList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("类型断言失败: 不是 []byte 或 string")
	}
	return json.Unmarshal(bytes, c)
}

// 实现 Valuer 接口
func (c ColumnSpecList) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Find 按列名查找列定义
func (c ColumnSpecList) Find(name string) (*ColumnSpec, bool) {
	for i := range c {
		if c[i].Name == name {
			return &c[i], true
		}
	}
	return nil, false
}
