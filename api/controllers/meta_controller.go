/*
 * @module api/controllers/meta_controller
 * @description 元数据控制器，提供文档类型、列类型枚举与操作日志查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 枚举类接口只读，内容由服务端定义
 * @dependencies formhub-service/service, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"formhub-service/service"
	"formhub-service/service/activity"
	"formhub-service/service/models"

	"github.com/go-chi/render"
)

// MetaController 元数据控制器
type MetaController struct {
	activity *activity.Logger
}

// NewMetaController 创建元数据控制器实例
func NewMetaController() *MetaController {
	return &MetaController{
		activity: service.GlobalActivityLogger,
	}
}

// GetDocumentTypes 获取文档类型列表
// @Summary 获取文档类型列表
// @Description 返回全部文档类型
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse
// @Router /meta/document-types [get]
func (c *MetaController) GetDocumentTypes(w http.ResponseWriter, r *http.Request) {
	var types []models.DocumentType
	if err := service.DB.Order("name").Find(&types).Error; err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", types))
}

// GetColumnTypes 获取支持的列类型
// @Summary 获取列类型枚举
// @Description 返回表单定义支持的全部语义列类型
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse
// @Router /meta/column-types [get]
func (c *MetaController) GetColumnTypes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取成功", models.SemanticColumnTypes))
}

// GetRecordStatuses 获取记录状态枚举
// @Summary 获取记录状态枚举
// @Description 返回记录审批流程的全部状态
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse
// @Router /meta/record-statuses [get]
func (c *MetaController) GetRecordStatuses(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取成功", models.RecordStatuses))
}

// GetActivityLogs 查询操作日志
// @Summary 查询操作日志
// @Description 按时间倒序返回最近的操作日志
// @Tags 元数据
// @Produce json
// @Param limit query int false "返回条数，默认50"
// @Success 200 {object} APIResponse
// @Router /meta/activity-logs [get]
func (c *MetaController) GetActivityLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := c.activity.ListRecent(limit)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("获取成功", logs))
}
