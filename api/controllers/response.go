package controllers

import (
	"net/http"

	"formhub-service/service/models"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 构造成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data}
}

// ErrorResponse 构造失败响应
func ErrorResponse(status int, msg string, err error) *APIResponse {
	resp := &APIResponse{Status: status, Msg: msg}
	if err != nil {
		resp.Data = err.Error()
	}
	return resp
}

// RenderError 按错误分类映射HTTP状态码并渲染统一响应
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *models.ValidationError:
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, &APIResponse{
			Status: http.StatusUnprocessableEntity,
			Msg:    e.Error(),
			Data:   e.Fields,
		})
	case *models.NotFoundError:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse(http.StatusNotFound, e.Error(), nil))
	case *models.ConflictError:
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ErrorResponse(http.StatusConflict, e.Error(), nil))
	case *models.AuthorizationError:
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, ErrorResponse(http.StatusForbidden, e.Error(), nil))
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse(http.StatusInternalServerError, "内部服务错误", err))
	}
}
