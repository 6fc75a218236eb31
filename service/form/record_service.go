/*
 * @module service/form/record_service
 * @description 动态记录网关，面向运行时物理表的记录增删改查
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 剥离工作流字段 -> 规则校验 -> 物理表读写 -> 操作日志
 * @rules 工作流字段只能由状态机变更；新建记录状态固定为draft；校验失败不触碰物理表
 * @dependencies formhub-service/service/activity, formhub-service/service/models, gorm.io/gorm
 * @refs service/form/review_service.go
 */

package form

import (
	"fmt"
	"strings"
	"time"

	"formhub-service/service/activity"
	"formhub-service/service/database"
	"formhub-service/service/models"

	"gorm.io/gorm"
)

// RecordService 动态记录网关
type RecordService struct {
	db       *gorm.DB
	activity *activity.Logger
}

// NewRecordService 创建记录网关实例
func NewRecordService(db *gorm.DB, activityLogger *activity.Logger) *RecordService {
	return &RecordService{db: db, activity: activityLogger}
}

// ListRecords 列出表单的全部记录，按创建时间倒序
func (s *RecordService) ListRecords(form *models.DynamicForm) ([]models.Record, error) {
	var rows []map[string]interface{}
	query := fmt.Sprintf(`SELECT * FROM "%s" ORDER BY created_at DESC, id DESC`, form.TableName)
	if err := s.db.Raw(query).Scan(&rows).Error; err != nil {
		return nil, &models.StorageError{Op: "list_records", Err: err}
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, normalizeRow(row))
	}
	return records, nil
}

// GetRecord 获取单条记录
func (s *RecordService) GetRecord(form *models.DynamicForm, recordID int64) (models.Record, error) {
	var row map[string]interface{}
	query := fmt.Sprintf(`SELECT * FROM "%s" WHERE id = ?`, form.TableName)
	if err := s.db.Raw(query, recordID).Scan(&row).Error; err != nil {
		return nil, &models.StorageError{Op: "get_record", Err: err}
	}
	if len(row) == 0 {
		return nil, &models.NotFoundError{Resource: "记录", ID: fmt.Sprintf("%d", recordID)}
	}
	return normalizeRow(row), nil
}

// CreateRecord 创建记录
// 调用方提交的工作流字段一律剥离；新记录状态固定为draft
func (s *RecordService) CreateRecord(form *models.DynamicForm, values models.Record, actor activity.Actor) (models.Record, error) {
	userValues := stripWorkflowFields(values)

	rules := BuildRules(form.ColumnsConfig)
	normalized, verr := rules.Validate(userValues)
	if verr != nil {
		return nil, verr
	}

	now := time.Now()
	columns := []string{"created_by", "status", "created_at", "updated_at"}
	args := []interface{}{nullableString(actor.ID), models.RecordStatusDraft, now, now}
	for _, name := range rules.Columns() {
		value, present := normalized[name]
		if !present {
			continue
		}
		columns = append(columns, name)
		args = append(args, value)
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, name := range columns {
		placeholders[i] = "?"
		quoted[i] = fmt.Sprintf(`"%s"`, name)
	}

	var recordID int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "sqlite" {
			insertSQL := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
				form.TableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
			if err := tx.Exec(insertSQL, args...).Error; err != nil {
				return err
			}
			return tx.Raw("SELECT last_insert_rowid()").Scan(&recordID).Error
		}

		insertSQL := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s) RETURNING id`,
			form.TableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
		return tx.Raw(insertSQL, args...).Scan(&recordID).Error
	})
	if err != nil {
		return nil, &models.StorageError{Op: "create_record", Err: err}
	}

	record, err := s.GetRecord(form, recordID)
	if err != nil {
		return nil, err
	}

	s.activity.Log(actor, models.ActivityActionCreated,
		fmt.Sprintf("在表单 %s 中创建了记录 #%d", form.Name, recordID), form)
	return record, nil
}

// UpdateRecord 更新记录的用户数据列
// 提交数据按当前列配置重新走完整规则校验，必填列缺失即违规
func (s *RecordService) UpdateRecord(form *models.DynamicForm, recordID int64, values models.Record, actor activity.Actor) (models.Record, error) {
	if _, err := s.GetRecord(form, recordID); err != nil {
		return nil, err
	}

	userValues := stripWorkflowFields(values)

	rules := BuildRules(form.ColumnsConfig)
	normalized, verr := rules.Validate(userValues)
	if verr != nil {
		return nil, verr
	}

	assignments := []string{`updated_at = ?`}
	args := []interface{}{time.Now()}
	for _, name := range rules.Columns() {
		value, present := normalized[name]
		if !present {
			continue
		}
		assignments = append(assignments, fmt.Sprintf(`"%s" = ?`, name))
		args = append(args, value)
	}
	args = append(args, recordID)

	updateSQL := fmt.Sprintf(`UPDATE "%s" SET %s WHERE id = ?`, form.TableName, strings.Join(assignments, ", "))
	if err := s.db.Exec(updateSQL, args...).Error; err != nil {
		return nil, &models.StorageError{Op: "update_record", Err: err}
	}

	record, err := s.GetRecord(form, recordID)
	if err != nil {
		return nil, err
	}

	s.activity.Log(actor, models.ActivityActionUpdated,
		fmt.Sprintf("更新了表单 %s 的记录 #%d", form.Name, recordID), form)
	return record, nil
}

// DeleteRecord 删除记录
func (s *RecordService) DeleteRecord(form *models.DynamicForm, recordID int64, actor activity.Actor) error {
	if _, err := s.GetRecord(form, recordID); err != nil {
		return err
	}

	deleteSQL := fmt.Sprintf(`DELETE FROM "%s" WHERE id = ?`, form.TableName)
	if err := s.db.Exec(deleteSQL, recordID).Error; err != nil {
		return &models.StorageError{Op: "delete_record", Err: err}
	}

	s.activity.Log(actor, models.ActivityActionDeleted,
		fmt.Sprintf("删除了表单 %s 的记录 #%d", form.Name, recordID), form)
	return nil
}

// stripWorkflowFields 剥离调用方提交的工作流保留字段
func stripWorkflowFields(values models.Record) models.Record {
	cleaned := make(models.Record, len(values))
	for name, value := range values {
		if database.IsReservedColumnName(name) {
			continue
		}
		cleaned[name] = value
	}
	return cleaned
}

// normalizeRow 把驱动返回的[]byte列值归一化为字符串
func normalizeRow(row map[string]interface{}) models.Record {
	record := make(models.Record, len(row))
	for name, value := range row {
		if bytes, ok := value.([]byte); ok {
			record[name] = string(bytes)
			continue
		}
		record[name] = value
	}
	return record
}

// nullableString 空字符串转为NULL
func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
