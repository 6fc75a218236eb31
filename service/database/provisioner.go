/*
 * @module service/database/provisioner
 * @description 物理表供给器，按表单列配置动态建表与删表
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 列配置校验 -> 表名冲突检查 -> DDL执行 -> 索引创建
 * @rules 工作流列先于用户列按固定顺序创建；任何DDL执行前先完成全部校验；删表幂等
 * @dependencies formhub-service/service/models, gorm.io/gorm
 * @refs service/database/translator.go, service/form/service.go
 */

package database

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"formhub-service/service/models"

	"gorm.io/gorm"
)

// ReservedColumnNames 工作流保留列名，用户列不得与之冲突
var ReservedColumnNames = []string{
	"id",
	"created_by",
	"status",
	"reviewer_id",
	"reviewed_at",
	"review_comments",
	"created_at",
	"updated_at",
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// IsReservedColumnName 判断列名是否为保留工作流列
func IsReservedColumnName(name string) bool {
	lower := strings.ToLower(name)
	for _, reserved := range ReservedColumnNames {
		if lower == reserved {
			return true
		}
	}
	return false
}

// ValidateColumnName 验证用户列名：标识符安全且不与保留工作流列冲突
func ValidateColumnName(name string) error {
	if name == "" {
		return fmt.Errorf("列名不能为空")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("列名必须以字母开头，且只能包含字母、数字和下划线")
	}
	if IsReservedColumnName(name) {
		return fmt.Errorf("列名 %s 与保留工作流列冲突", name)
	}
	return nil
}

// TableProvisioner 物理表供给器
type TableProvisioner struct {
	db *gorm.DB
}

// NewTableProvisioner 创建物理表供给器实例
func NewTableProvisioner(db *gorm.DB) *TableProvisioner {
	return &TableProvisioner{db: db}
}

// ValidateTableName 验证物理表名
func (p *TableProvisioner) ValidateTableName(tableName string) error {
	if len(tableName) == 0 {
		return fmt.Errorf("表名不能为空")
	}

	if len(tableName) > 63 {
		return fmt.Errorf("表名长度不能超过63个字符")
	}

	if !identifierPattern.MatchString(tableName) {
		return fmt.Errorf("表名必须以字母开头，且只能包含字母、数字和下划线")
	}

	return nil
}

// BuildTableName 根据slug生成唯一物理表名
// 格式为 form_<slug>_<unix时间戳>；同一时间单位内重建冲突时追加序号消歧
func (p *TableProvisioner) BuildTableName(slug string) (string, error) {
	base := fmt.Sprintf("form_%s_%d", strings.ReplaceAll(slug, "-", "_"), time.Now().Unix())

	candidate := base
	for i := 1; i <= 10; i++ {
		exists, err := p.TableExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}

	return "", &models.StorageError{Op: "build_table_name", Err: fmt.Errorf("无法为 slug %s 生成唯一表名", slug)}
}

// ProvisionTable 创建物理表
// 固定顺序：自增主键 -> 工作流列 -> 用户列（按声明顺序）-> 时间戳列
func (p *TableProvisioner) ProvisionTable(tableName string, columns models.ColumnSpecList) error {
	if err := p.ValidateTableName(tableName); err != nil {
		return &models.StorageError{Op: "provision", Err: err}
	}

	// 保留列名冲突在执行任何DDL之前拒绝
	for _, column := range columns {
		if IsReservedColumnName(column.Name) {
			return &models.StorageError{Op: "provision", Err: fmt.Errorf("列名 %s 与保留工作流列冲突", column.Name)}
		}
	}

	exists, err := p.TableExists(tableName)
	if err != nil {
		return &models.StorageError{Op: "provision", Err: err}
	}
	if exists {
		return &models.StorageError{Op: "provision", Err: fmt.Errorf("表 %s 已存在", tableName)}
	}

	definitions := []string{
		p.primaryKeyDefinition(),
		"created_by varchar(36)",
		fmt.Sprintf("status varchar(20) NOT NULL DEFAULT '%s' CHECK (status IN (%s))",
			models.RecordStatusDraft, quotedStatusList()),
		"reviewer_id varchar(36)",
		"reviewed_at timestamp",
		"review_comments text",
	}

	for _, column := range columns {
		definition := fmt.Sprintf("%s %s", p.quoteIdentifier(column.Name), MapColumnType(column.Type))
		if column.Required {
			definition += " NOT NULL"
		}
		definitions = append(definitions, definition)
	}

	definitions = append(definitions,
		"created_at timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP",
		"updated_at timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP",
	)

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", p.quoteIdentifier(tableName), strings.Join(definitions, ", "))
	if err := p.db.Exec(createSQL).Error; err != nil {
		return &models.StorageError{Op: "provision", Err: fmt.Errorf("创建表 %s 失败: %v", tableName, err)}
	}

	// created_by 与 status 建索引，供列表过滤与审批查询使用
	for _, indexColumn := range []string{"created_by", "status"} {
		indexSQL := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			p.quoteIdentifier(fmt.Sprintf("idx_%s_%s", tableName, indexColumn)),
			p.quoteIdentifier(tableName),
			indexColumn)
		if err := p.db.Exec(indexSQL).Error; err != nil {
			return &models.StorageError{Op: "provision", Err: fmt.Errorf("创建索引失败: %v", err)}
		}
	}

	log.Printf("物理表创建成功: %s，用户列数=%d", tableName, len(columns))
	return nil
}

// DeprovisionTable 删除物理表，表不存在时为无操作
func (p *TableProvisioner) DeprovisionTable(tableName string) error {
	if err := p.ValidateTableName(tableName); err != nil {
		return &models.StorageError{Op: "deprovision", Err: err}
	}

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", p.quoteIdentifier(tableName))
	if err := p.db.Exec(dropSQL).Error; err != nil {
		return &models.StorageError{Op: "deprovision", Err: fmt.Errorf("删除表 %s 失败: %v", tableName, err)}
	}

	log.Printf("物理表已删除: %s", tableName)
	return nil
}

// TableExists 检查物理表是否存在
func (p *TableProvisioner) TableExists(tableName string) (bool, error) {
	var count int64

	if p.db.Dialector.Name() == "sqlite" {
		err := p.db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&count).Error
		if err != nil {
			return false, fmt.Errorf("检查表存在性失败: %v", err)
		}
		return count > 0, nil
	}

	checkSQL := `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ?`
	if err := p.db.Raw(checkSQL, tableName).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("检查表存在性失败: %v", err)
	}
	return count > 0, nil
}

// CountRows 统计物理表当前行数
func (p *TableProvisioner) CountRows(tableName string) (int64, error) {
	if err := p.ValidateTableName(tableName); err != nil {
		return 0, &models.StorageError{Op: "count_rows", Err: err}
	}

	var count int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", p.quoteIdentifier(tableName))
	if err := p.db.Raw(countSQL).Scan(&count).Error; err != nil {
		return 0, &models.StorageError{Op: "count_rows", Err: err}
	}
	return count, nil
}

// primaryKeyDefinition 按方言生成自增主键定义
func (p *TableProvisioner) primaryKeyDefinition() string {
	if p.db.Dialector.Name() == "sqlite" {
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "id BIGSERIAL PRIMARY KEY"
}

// quoteIdentifier 给标识符添加引号
func (p *TableProvisioner) quoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, identifier)
}

// quotedStatusList 生成状态CHECK约束的取值列表
func quotedStatusList() string {
	quoted := make([]string, 0, len(models.RecordStatuses))
	for _, status := range models.RecordStatuses {
		quoted = append(quoted, fmt.Sprintf("'%s'", status))
	}
	return strings.Join(quoted, ", ")
}
