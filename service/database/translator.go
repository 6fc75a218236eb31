/*
 * @module service/database/translator
 * @description 语义类型到物理列类型的映射，封闭枚举上的纯函数
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 表单列配置 -> 语义类型解析 -> 物理列类型
 * @rules 未知类型回退为字符串类型而不是报错，保证建表流程向前兼容
 * @dependencies 无外部依赖
 * @refs service/database/provisioner.go
 */

package database

// 语义类型到物理列类型的映射表
var columnTypeMap = map[string]string{
	"string":   "varchar(255)",
	"text":     "text",
	"number":   "integer",
	"decimal":  "numeric",
	"date":     "date",
	"datetime": "timestamp",
	"boolean":  "boolean",
	"enum":     "varchar(255)", // 枚举以字符串存储，取值范围由校验规则保证
}

// MapColumnType 映射语义列类型到物理列类型
// 对封闭枚举全覆盖，未知类型默认按 string 处理
func MapColumnType(semanticType string) string {
	if nativeType, exists := columnTypeMap[semanticType]; exists {
		return nativeType
	}
	return "varchar(255)"
}
