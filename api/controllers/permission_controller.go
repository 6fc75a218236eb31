/*
 * @module api/controllers/permission_controller
 * @description 权限管理控制器，提供权限分配与可访问文档查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 权限行按 (user_id, document_id) 幂等更新
 * @dependencies formhub-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"formhub-service/api/middleware"
	"formhub-service/service"
	"formhub-service/service/permission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// PermissionController 权限管理控制器
type PermissionController struct {
	permissions *permission.Service
}

// NewPermissionController 创建权限管理控制器实例
func NewPermissionController() *PermissionController {
	return &PermissionController{
		permissions: service.GlobalPermissionService,
	}
}

// UpsertPermissionRequest 权限分配请求
type UpsertPermissionRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	CanView    bool   `json:"can_view"`
	CanEdit    bool   `json:"can_edit"`
	CanDelete  bool   `json:"can_delete"`
	CanReview  bool   `json:"can_review"`
}

// UpsertPermission 分配或更新权限
// @Summary 分配权限
// @Description 为用户分配或更新对指定表单的权限
// @Tags 权限管理
// @Accept json
// @Produce json
// @Param request body UpsertPermissionRequest true "权限分配请求"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /permissions [post]
func (c *PermissionController) UpsertPermission(w http.ResponseWriter, r *http.Request) {
	var req UpsertPermissionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "请求参数格式错误", err))
		return
	}

	grant, err := c.permissions.Upsert(req.UserID, req.DocumentID,
		req.CanView, req.CanEdit, req.CanDelete, req.CanReview)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("权限分配成功", grant))
}

// GetUserPermissions 查询用户权限
// @Summary 查询用户权限
// @Description 返回用户的全部权限行及其关联表单
// @Tags 权限管理
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} APIResponse
// @Router /permissions/users/{user_id} [get]
func (c *PermissionController) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	grants, err := c.permissions.ListForUser(chi.URLParam(r, "user_id"))
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", grants))
}

// MyDocuments 查询当前操作者可访问的表单
// @Summary 我的文档
// @Description 返回当前操作者可查看的表单及能力快照
// @Tags 权限管理
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /my-documents [get]
func (c *PermissionController) MyDocuments(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	documents, err := c.permissions.ListAccessibleForms(actor.ID)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", documents))
}
