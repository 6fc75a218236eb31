/*
 * @module service/form/review_service
 * @description 记录审批状态机，唯一允许变更工作流字段的入口
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow draft/in_review -> approved 或 returned；审批人与时间随状态一并写入
 * @rules 目标状态仅限approved与returned；操作者需具备审核能力或管理员角色；校验失败不触碰记录
 * @dependencies formhub-service/service/activity, formhub-service/service/models, gorm.io/gorm
 * @refs service/form/record_service.go
 */

package form

import (
	"fmt"
	"time"

	"formhub-service/service/activity"
	"formhub-service/service/models"

	"gorm.io/gorm"
)

// ReviewService 记录审批状态机
type ReviewService struct {
	db       *gorm.DB
	records  *RecordService
	activity *activity.Logger
}

// NewReviewService 创建审批状态机实例
func NewReviewService(db *gorm.DB, records *RecordService, activityLogger *activity.Logger) *ReviewService {
	return &ReviewService{db: db, records: records, activity: activityLogger}
}

// ReviewRecord 审批一条记录
// 状态、审批人、审批时间与意见作为一个整体写入
func (s *ReviewService) ReviewRecord(form *models.DynamicForm, recordID int64, req *models.ReviewRequest, actor activity.Actor, decision models.PermissionDecision) (models.Record, error) {
	if !isReviewTarget(req.Status) {
		verr := models.NewValidationError()
		verr.Add("status", fmt.Sprintf("目标状态只能是 %s 或 %s", models.RecordStatusApproved, models.RecordStatusReturned))
		return nil, verr
	}

	if !decision.Allows("review") {
		return nil, &models.AuthorizationError{Message: "操作者缺少审核权限"}
	}

	if _, err := s.records.GetRecord(form, recordID); err != nil {
		return nil, err
	}

	updateSQL := fmt.Sprintf(
		`UPDATE "%s" SET status = ?, reviewer_id = ?, reviewed_at = ?, review_comments = ?, updated_at = ? WHERE id = ?`,
		form.TableName)
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Exec(updateSQL, req.Status, nullableString(actor.ID), now, nullableString(req.Comments), now, recordID).Error
	})
	if err != nil {
		return nil, &models.StorageError{Op: "review_record", Err: err}
	}

	record, err := s.records.GetRecord(form, recordID)
	if err != nil {
		return nil, err
	}

	s.activity.Log(actor, models.ActivityActionUpdated,
		fmt.Sprintf("审核了表单 %s 的记录 #%d: %s", form.Name, recordID, req.Status), form)
	return record, nil
}

// isReviewTarget 判断状态是否为合法审批目标
func isReviewTarget(status string) bool {
	for _, target := range models.ReviewTargetStatuses {
		if status == target {
			return true
		}
	}
	return false
}
