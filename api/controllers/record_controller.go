/*
 * @module api/controllers/record_controller
 * @description 记录管理控制器，提供动态表记录的增删改查与审批接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 表单定位 -> 能力决策 -> 网关或状态机执行 -> 统一响应
 * @rules 查看、编辑、删除在进入网关前按能力决策拦截；审批能力由状态机自行校验
 * @dependencies formhub-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"formhub-service/api/middleware"
	"formhub-service/service"
	"formhub-service/service/form"
	"formhub-service/service/models"
	"formhub-service/service/permission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// RecordController 记录管理控制器
type RecordController struct {
	forms       *form.Service
	records     *form.RecordService
	reviews     *form.ReviewService
	permissions *permission.Service
}

// NewRecordController 创建记录管理控制器实例
func NewRecordController() *RecordController {
	return &RecordController{
		forms:       service.GlobalFormService,
		records:     service.GlobalRecordService,
		reviews:     service.GlobalReviewService,
		permissions: service.GlobalPermissionService,
	}
}

// resolveForm 定位表单并解析当前操作者的能力决策
func (c *RecordController) resolveForm(r *http.Request) (*models.DynamicForm, models.PermissionDecision, error) {
	found, err := c.forms.GetForm(chi.URLParam(r, "id"))
	if err != nil {
		return nil, models.PermissionDecision{}, err
	}

	actor := middleware.GetActor(r.Context())
	decision, err := c.permissions.Resolve(actor.ID, found.ID)
	if err != nil {
		return nil, models.PermissionDecision{}, err
	}
	return found, decision, nil
}

// parseRecordID 解析路径中的记录ID
func parseRecordID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "record_id"), 10, 64)
}

// ListRecords 获取记录列表
// @Summary 获取记录列表
// @Description 按创建时间倒序返回表单的全部记录
// @Tags 记录管理
// @Produce json
// @Param id path string true "表单ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /forms/{id}/records [get]
func (c *RecordController) ListRecords(w http.ResponseWriter, r *http.Request) {
	found, decision, err := c.resolveForm(r)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	if !decision.Allows("view") {
		RenderError(w, r, &models.AuthorizationError{Message: "操作者缺少查看权限"})
		return
	}

	records, err := c.records.ListRecords(found)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", records))
}

// GetRecord 获取记录详情
// @Summary 获取记录详情
// @Description 按ID获取单条记录
// @Tags 记录管理
// @Produce json
// @Param id path string true "表单ID"
// @Param record_id path int true "记录ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /forms/{id}/records/{record_id} [get]
func (c *RecordController) GetRecord(w http.ResponseWriter, r *http.Request) {
	found, decision, err := c.resolveForm(r)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	if !decision.Allows("view") {
		RenderError(w, r, &models.AuthorizationError{Message: "操作者缺少查看权限"})
		return
	}

	recordID, err := parseRecordID(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "记录ID格式错误", err))
		return
	}

	record, err := c.records.GetRecord(found, recordID)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", record))
}

// CreateRecord 创建记录
// @Summary 创建记录
// @Description 校验数据后在表单物理表中创建draft状态的记录
// @Tags 记录管理
// @Accept json
// @Produce json
// @Param id path string true "表单ID"
// @Param request body models.Record true "记录数据"
// @Success 201 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /forms/{id}/records [post]
func (c *RecordController) CreateRecord(w http.ResponseWriter, r *http.Request) {
	found, decision, err := c.resolveForm(r)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	if !decision.Allows("edit") {
		RenderError(w, r, &models.AuthorizationError{Message: "操作者缺少编辑权限"})
		return
	}

	var values models.Record
	if err := render.DecodeJSON(r.Body, &values); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "请求参数格式错误", err))
		return
	}

	record, err := c.records.CreateRecord(found, values, middleware.GetActor(r.Context()))
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SuccessResponse("记录创建成功", record))
}

// UpdateRecord 更新记录
// @Summary 更新记录
// @Description 校验后更新记录的用户数据列，工作流字段不受影响
// @Tags 记录管理
// @Accept json
// @Produce json
// @Param id path string true "表单ID"
// @Param record_id path int true "记录ID"
// @Param request body models.Record true "记录数据"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /forms/{id}/records/{record_id} [put]
func (c *RecordController) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	found, decision, err := c.resolveForm(r)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	if !decision.Allows("edit") {
		RenderError(w, r, &models.AuthorizationError{Message: "操作者缺少编辑权限"})
		return
	}

	recordID, err := parseRecordID(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "记录ID格式错误", err))
		return
	}

	var values models.Record
	if err := render.DecodeJSON(r.Body, &values); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "请求参数格式错误", err))
		return
	}

	record, err := c.records.UpdateRecord(found, recordID, values, middleware.GetActor(r.Context()))
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("记录更新成功", record))
}

// DeleteRecord 删除记录
// @Summary 删除记录
// @Description 从表单物理表中删除指定记录
// @Tags 记录管理
// @Produce json
// @Param id path string true "表单ID"
// @Param record_id path int true "记录ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /forms/{id}/records/{record_id} [delete]
func (c *RecordController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	found, decision, err := c.resolveForm(r)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	if !decision.Allows("delete") {
		RenderError(w, r, &models.AuthorizationError{Message: "操作者缺少删除权限"})
		return
	}

	recordID, err := parseRecordID(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "记录ID格式错误", err))
		return
	}

	if err := c.records.DeleteRecord(found, recordID, middleware.GetActor(r.Context())); err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("记录删除成功", nil))
}

// ReviewRecord 审批记录
// @Summary 审批记录
// @Description 把记录审批为approved或returned，审批人与时间一并写入
// @Tags 记录管理
// @Accept json
// @Produce json
// @Param id path string true "表单ID"
// @Param record_id path int true "记录ID"
// @Param request body models.ReviewRequest true "审批请求"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /forms/{id}/records/{record_id}/review [put]
func (c *RecordController) ReviewRecord(w http.ResponseWriter, r *http.Request) {
	found, decision, err := c.resolveForm(r)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	recordID, err := parseRecordID(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "记录ID格式错误", err))
		return
	}

	var req models.ReviewRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "请求参数格式错误", err))
		return
	}

	record, err := c.reviews.ReviewRecord(found, recordID, &req, middleware.GetActor(r.Context()), decision)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("审批成功", record))
}
