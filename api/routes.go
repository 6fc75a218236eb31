/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package api

import (
	"formhub-service/api/controllers"
	appmiddleware "formhub-service/api/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(appmiddleware.ActorExtractor)

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 表单管理
	r.Route("/forms", func(r chi.Router) {
		formController := controllers.NewFormController()
		recordController := controllers.NewRecordController()

		// 表单定义CRUD
		r.Post("/", formController.CreateForm)
		r.Get("/", formController.ListForms)
		r.Get("/{id}", formController.GetForm)
		r.Put("/{id}", formController.UpdateForm)
		r.Delete("/{id}", formController.DeleteForm)

		// 记录CRUD与审批
		r.Route("/{id}/records", func(r chi.Router) {
			r.Post("/", recordController.CreateRecord)
			r.Get("/", recordController.ListRecords)
			r.Get("/{record_id}", recordController.GetRecord)
			r.Put("/{record_id}", recordController.UpdateRecord)
			r.Delete("/{record_id}", recordController.DeleteRecord)
			r.Put("/{record_id}/review", recordController.ReviewRecord)
		})
	})

	// 权限管理
	permissionController := controllers.NewPermissionController()
	r.Route("/permissions", func(r chi.Router) {
		r.Post("/", permissionController.UpsertPermission)
		r.Get("/users/{user_id}", permissionController.GetUserPermissions)
	})
	r.Get("/my-documents", permissionController.MyDocuments)

	// 元数据
	r.Route("/meta", func(r chi.Router) {
		metaController := controllers.NewMetaController()
		r.Get("/document-types", metaController.GetDocumentTypes)
		r.Get("/column-types", metaController.GetColumnTypes)
		r.Get("/record-statuses", metaController.GetRecordStatuses)
		r.Get("/activity-logs", metaController.GetActivityLogs)
	})
}
