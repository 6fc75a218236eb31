/*
 * @module api/controllers/form_controller
 * @description 表单管理控制器，提供表单定义的增删改查接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 表单定义接口不做角色拦截，访问控制由上游网关承担；错误按分类映射HTTP状态码
 * @dependencies formhub-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"formhub-service/api/middleware"
	"formhub-service/service"
	"formhub-service/service/form"
	"formhub-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// FormController 表单管理控制器
type FormController struct {
	forms *form.Service
}

// NewFormController 创建表单管理控制器实例
func NewFormController() *FormController {
	return &FormController{
		forms: service.GlobalFormService,
	}
}

// CreateForm 创建表单
// @Summary 创建表单
// @Description 创建表单定义并动态建立对应的物理表
// @Tags 表单管理
// @Accept json
// @Produce json
// @Param request body models.CreateFormRequest true "表单定义"
// @Success 201 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /forms [post]
func (c *FormController) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFormRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "请求参数格式错误", err))
		return
	}

	actor := middleware.GetActor(r.Context())
	created, err := c.forms.CreateForm(&req, actor.ID)
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SuccessResponse("表单创建成功", created))
}

// ListForms 获取表单列表
// @Summary 获取表单列表
// @Description 按创建时间倒序返回全部表单定义
// @Tags 表单管理
// @Produce json
// @Success 200 {object} APIResponse
// @Router /forms [get]
func (c *FormController) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := c.forms.ListForms()
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", forms))
}

// GetForm 获取表单详情
// @Summary 获取表单详情
// @Description 按ID获取表单定义
// @Tags 表单管理
// @Produce json
// @Param id path string true "表单ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /forms/{id} [get]
func (c *FormController) GetForm(w http.ResponseWriter, r *http.Request) {
	found, err := c.forms.GetForm(chi.URLParam(r, "id"))
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", found))
}

// UpdateForm 更新表单元数据
// @Summary 更新表单元数据
// @Description 更新表单名称、slug、文档类型与通知配置；列配置不可修改
// @Tags 表单管理
// @Accept json
// @Produce json
// @Param id path string true "表单ID"
// @Param request body models.UpdateFormRequest true "更新内容"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /forms/{id} [put]
func (c *FormController) UpdateForm(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFormRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse(http.StatusBadRequest, "请求参数格式错误", err))
		return
	}

	updated, err := c.forms.UpdateForm(chi.URLParam(r, "id"), &req)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("表单更新成功", updated))
}

// DeleteForm 删除表单
// @Summary 删除表单
// @Description 删除表单定义及其物理表和全部记录
// @Tags 表单管理
// @Produce json
// @Param id path string true "表单ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /forms/{id} [delete]
func (c *FormController) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := c.forms.DeleteForm(chi.URLParam(r, "id")); err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("表单删除成功", nil))
}
