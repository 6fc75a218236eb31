/*
 * @module service/form/service
 * @description 表单注册服务，管理表单元数据并编排物理表的创建与删除
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 定义校验 -> 物理表创建 -> 元数据落库；失败时补偿删除孤立物理表
 * @rules 元数据行与物理表必须同生共死；物理表有数据后slug不可变更；列配置创建后不可修改
 * @dependencies formhub-service/service/database, formhub-service/service/models, gorm.io/gorm
 * @refs service/form/record_service.go
 */

package form

import (
	"fmt"
	"log"
	"regexp"

	"formhub-service/service/database"
	"formhub-service/service/models"

	"gorm.io/gorm"
)

var (
	slugPattern             = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	notificationTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Service 表单注册服务
type Service struct {
	db          *gorm.DB
	provisioner *database.TableProvisioner
}

// NewService 创建表单注册服务实例
func NewService(db *gorm.DB, provisioner *database.TableProvisioner) *Service {
	return &Service{
		db:          db,
		provisioner: provisioner,
	}
}

// CreateForm 创建表单及其物理表
// 仅在物理表创建成功后写入元数据；元数据写入失败时补偿删除物理表
func (s *Service) CreateForm(req *models.CreateFormRequest, actorID string) (*models.DynamicForm, error) {
	if err := s.validateDefinition(req); err != nil {
		return nil, err
	}

	// slug 全局唯一
	var count int64
	if err := s.db.Model(&models.DynamicForm{}).Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
		return nil, &models.StorageError{Op: "create_form", Err: err}
	}
	if count > 0 {
		return nil, &models.ConflictError{Message: fmt.Sprintf("slug %s 已被占用", req.Slug)}
	}

	tableName, err := s.provisioner.BuildTableName(req.Slug)
	if err != nil {
		return nil, err
	}

	if err := s.provisioner.ProvisionTable(tableName, req.Columns); err != nil {
		return nil, err
	}

	form := &models.DynamicForm{
		Name:                  req.Name,
		Slug:                  req.Slug,
		TableName:             tableName,
		ColumnsConfig:         req.Columns,
		DocumentTypeID:        req.DocumentTypeID,
		IsNotificationEnabled: req.IsNotificationEnabled,
		NotificationTime:      req.NotificationTime,
	}
	if actorID != "" {
		form.CreatedBy = &actorID
	}

	if err := s.db.Create(form).Error; err != nil {
		// 补偿动作：不允许出现没有元数据的孤立物理表
		if dropErr := s.provisioner.DeprovisionTable(tableName); dropErr != nil {
			log.Printf("[ERROR] 补偿删除物理表失败: table=%s, err=%v", tableName, dropErr)
		}
		return nil, &models.StorageError{Op: "create_form", Err: err}
	}

	return form, nil
}

// GetForm 获取表单详情
func (s *Service) GetForm(id string) (*models.DynamicForm, error) {
	var form models.DynamicForm
	if err := s.db.First(&form, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &models.NotFoundError{Resource: "表单", ID: id}
		}
		return nil, &models.StorageError{Op: "get_form", Err: err}
	}
	return &form, nil
}

// ListForms 列出全部表单
func (s *Service) ListForms() ([]models.DynamicForm, error) {
	var forms []models.DynamicForm
	if err := s.db.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, &models.StorageError{Op: "list_forms", Err: err}
	}
	return forms, nil
}

// UpdateForm 更新表单元数据
// 仅接受名称、slug、文档类型与通知设置；物理表有数据后拒绝slug变更；列配置不可修改
func (s *Service) UpdateForm(id string, req *models.UpdateFormRequest) (*models.DynamicForm, error) {
	form, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != form.Slug {
		if !slugPattern.MatchString(*req.Slug) {
			verr := models.NewValidationError()
			verr.Add("slug", "slug 只能包含字母、数字、连字符和下划线")
			return nil, verr
		}

		var count int64
		if err := s.db.Model(&models.DynamicForm{}).Where("slug = ? AND id <> ?", *req.Slug, id).Count(&count).Error; err != nil {
			return nil, &models.StorageError{Op: "update_form", Err: err}
		}
		if count > 0 {
			return nil, &models.ConflictError{Message: fmt.Sprintf("slug %s 已被占用", *req.Slug)}
		}

		rows, err := s.provisioner.CountRows(form.TableName)
		if err != nil {
			return nil, err
		}
		if rows > 0 {
			return nil, &models.ConflictError{Message: "表单已存在记录，不允许变更slug"}
		}
		form.Slug = *req.Slug
	}

	if req.Name != nil {
		form.Name = *req.Name
	}
	if req.DocumentTypeID != nil {
		form.DocumentTypeID = req.DocumentTypeID
	}
	if req.IsNotificationEnabled != nil {
		form.IsNotificationEnabled = *req.IsNotificationEnabled
	}
	if req.NotificationTime != nil {
		if !notificationTimePattern.MatchString(*req.NotificationTime) {
			verr := models.NewValidationError()
			verr.Add("notification_time", "通知时间格式应为 HH:MM")
			return nil, verr
		}
		form.NotificationTime = req.NotificationTime
	}

	if err := s.db.Save(form).Error; err != nil {
		return nil, &models.StorageError{Op: "update_form", Err: err}
	}
	return form, nil
}

// DeleteForm 删除表单及其物理表
// 先删物理表再删元数据行；删表失败时保留元数据行以便重试清理
func (s *Service) DeleteForm(id string) error {
	form, err := s.GetForm(id)
	if err != nil {
		return err
	}

	if err := s.provisioner.DeprovisionTable(form.TableName); err != nil {
		return err
	}

	if err := s.db.Delete(&models.DynamicForm{}, "id = ?", id).Error; err != nil {
		return &models.StorageError{Op: "delete_form", Err: err}
	}

	log.Printf("表单已删除: id=%s, table=%s", id, form.TableName)
	return nil
}

// validateDefinition 校验表单定义，收集全部违规字段
func (s *Service) validateDefinition(req *models.CreateFormRequest) error {
	verr := models.NewValidationError()

	if req.Name == "" {
		verr.Add("name", "名称为必填项")
	} else if len(req.Name) > 255 {
		verr.Add("name", "名称长度不能超过255个字符")
	}

	if req.Slug == "" {
		verr.Add("slug", "slug 为必填项")
	} else if !slugPattern.MatchString(req.Slug) {
		verr.Add("slug", "slug 只能包含字母、数字、连字符和下划线")
	}

	if len(req.Columns) == 0 {
		verr.Add("columns", "至少需要一个列定义")
	}

	seen := make(map[string]bool)
	for i, column := range req.Columns {
		field := fmt.Sprintf("columns.%d", i)

		if err := database.ValidateColumnName(column.Name); err != nil {
			verr.Add(field+".name", err.Error())
		} else if seen[column.Name] {
			verr.Add(field+".name", fmt.Sprintf("列名 %s 重复", column.Name))
		}
		seen[column.Name] = true

		if !isKnownColumnType(column.Type) {
			verr.Add(field+".type", fmt.Sprintf("不支持的列类型: %s", column.Type))
		}

		if column.Label == "" {
			verr.Add(field+".label", "标签为必填项")
		}

		if column.Type == models.ColumnTypeEnum && len(column.Options) == 0 {
			verr.Add(field+".options", "enum 类型必须提供非空选项列表")
		}
		if column.Type != models.ColumnTypeEnum && len(column.Options) > 0 {
			verr.Add(field+".options", "仅 enum 类型允许提供选项列表")
		}
	}

	if req.NotificationTime != nil && !notificationTimePattern.MatchString(*req.NotificationTime) {
		verr.Add("notification_time", "通知时间格式应为 HH:MM")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// isKnownColumnType 判断语义类型是否属于封闭枚举
func isKnownColumnType(columnType string) bool {
	for _, known := range models.SemanticColumnTypes {
		if columnType == known {
			return true
		}
	}
	return false
}
