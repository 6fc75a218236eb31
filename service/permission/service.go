/*
 * @module service/permission/service
 * @description 权限服务，维护用户文档权限并解析为归一化能力决策
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 权限分配 -> 记录操作前解析能力决策 -> 网关与状态机消费
 * @rules admin与super-admin全量放行；普通用户无权限行时默认无任何访问
 * @dependencies formhub-service/service/models, gorm.io/gorm
 * @refs api/controllers/record_controller.go
 */

package permission

import (
	"formhub-service/service/models"

	"gorm.io/gorm"
)

// Service 权限服务
type Service struct {
	db *gorm.DB
}

// NewService 创建权限服务实例
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Resolve 解析用户对指定表单的能力决策
// 管理员角色全量放行；普通用户读取权限行，无权限行时默认全拒
func (s *Service) Resolve(userID, formID string) (models.PermissionDecision, error) {
	var decision models.PermissionDecision

	if userID == "" {
		return decision, nil
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decision, nil
		}
		return decision, &models.StorageError{Op: "resolve_permission", Err: err}
	}

	if user.IsPrivileged() {
		return models.PermissionDecision{
			CanView:   true,
			CanEdit:   true,
			CanDelete: true,
			CanReview: true,
			IsAdmin:   true,
		}, nil
	}

	var grant models.UserDocumentPermission
	err := s.db.Where("user_id = ? AND document_id = ?", userID, formID).First(&grant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decision, nil
		}
		return decision, &models.StorageError{Op: "resolve_permission", Err: err}
	}

	return models.PermissionDecision{
		CanView:   grant.CanView,
		CanEdit:   grant.CanEdit,
		CanDelete: grant.CanDelete,
		CanReview: grant.CanReview,
	}, nil
}

// Upsert 分配或更新用户对表单的权限
func (s *Service) Upsert(userID, formID string, canView, canEdit, canDelete, canReview bool) (*models.UserDocumentPermission, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &models.NotFoundError{Resource: "用户", ID: userID}
		}
		return nil, &models.StorageError{Op: "upsert_permission", Err: err}
	}

	var form models.DynamicForm
	if err := s.db.First(&form, "id = ?", formID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &models.NotFoundError{Resource: "表单", ID: formID}
		}
		return nil, &models.StorageError{Op: "upsert_permission", Err: err}
	}

	var grant models.UserDocumentPermission
	err := s.db.Where("user_id = ? AND document_id = ?", userID, formID).First(&grant).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, &models.StorageError{Op: "upsert_permission", Err: err}
	}

	grant.UserID = userID
	grant.DocumentID = formID
	grant.CanView = canView
	grant.CanEdit = canEdit
	grant.CanDelete = canDelete
	grant.CanReview = canReview

	if err := s.db.Save(&grant).Error; err != nil {
		return nil, &models.StorageError{Op: "upsert_permission", Err: err}
	}
	return &grant, nil
}

// ListForUser 列出用户的全部权限行
func (s *Service) ListForUser(userID string) ([]models.UserDocumentPermission, error) {
	var grants []models.UserDocumentPermission
	err := s.db.Preload("Document").Where("user_id = ?", userID).Find(&grants).Error
	if err != nil {
		return nil, &models.StorageError{Op: "list_permissions", Err: err}
	}
	return grants, nil
}

// ListViewers 列出对表单具有查看权限的用户，供提醒投递使用
func (s *Service) ListViewers(formID string) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN user_document_permissions p ON p.user_id = users.id").
		Where("p.document_id = ? AND p.can_view = ?", formID, true).
		Find(&users).Error
	if err != nil {
		return nil, &models.StorageError{Op: "list_viewers", Err: err}
	}
	return users, nil
}

// ListAccessibleForms 列出用户可访问的表单及能力快照
// 管理员对全部表单全量放行
func (s *Service) ListAccessibleForms(userID string) ([]models.AccessibleDocument, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &models.NotFoundError{Resource: "用户", ID: userID}
		}
		return nil, &models.StorageError{Op: "list_accessible_forms", Err: err}
	}

	if user.IsPrivileged() {
		var forms []models.DynamicForm
		if err := s.db.Order("created_at DESC").Find(&forms).Error; err != nil {
			return nil, &models.StorageError{Op: "list_accessible_forms", Err: err}
		}

		documents := make([]models.AccessibleDocument, 0, len(forms))
		for _, form := range forms {
			documents = append(documents, models.AccessibleDocument{
				ID:        form.ID,
				Name:      form.Name,
				Slug:      form.Slug,
				CanView:   true,
				CanEdit:   true,
				CanDelete: true,
				CanReview: true,
				IsAdmin:   true,
			})
		}
		return documents, nil
	}

	grants, err := s.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	documents := make([]models.AccessibleDocument, 0, len(grants))
	for _, grant := range grants {
		if grant.Document == nil || !grant.CanView {
			continue
		}
		documents = append(documents, models.AccessibleDocument{
			ID:        grant.Document.ID,
			Name:      grant.Document.Name,
			Slug:      grant.Document.Slug,
			CanView:   grant.CanView,
			CanEdit:   grant.CanEdit,
			CanDelete: grant.CanDelete,
			CanReview: grant.CanReview,
		})
	}
	return documents, nil
}
