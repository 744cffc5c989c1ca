package handler

import (
	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/middleware"
	"doc-annotator-go/pkg/token"
)

// Handlers 汇总所有路由处理器。
type Handlers struct {
	Documents *DocumentHandler
	Entities  *EntityHandler
	Labels    *LabelHandler
	AI        *AIHandler

	Relations      *RelationHandler
	RelationLabels *RelationLabelHandler
	Prompts        *PromptHandler
}

// NewRouter 创建 Gin 引擎并注册 /api/v1 路由。jwtManager 为 nil 时不启用鉴权。
func NewRouter(h Handlers, jwtManager *token.JWTManager) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	apiV1 := r.Group("/api/v1")
	if jwtManager != nil {
		apiV1.Use(middleware.AuthMiddleware(jwtManager))
	}
	// 写操作需要编辑权限
	write := middleware.RequireRole(token.RoleEditor, token.RoleAdmin)

	documents := apiV1.Group("/documents")
	{
		documents.GET("", h.Documents.List)
		documents.POST("", write, h.Documents.Create)
		documents.GET("/:id", h.Documents.Get)
		documents.PUT("/:id", write, h.Documents.Update)
		documents.DELETE("/:id", write, h.Documents.Delete)
		documents.GET("/:id/tokens", h.Documents.ListTokens)
		documents.POST("/:id/tokens/resync", write, h.Documents.ResyncTokens)
		documents.GET("/:id/entities", h.Entities.ListByDocument)
		documents.GET("/:id/relations", h.Relations.ListByDocument)
	}

	entities := apiV1.Group("/entities")
	{
		// 静态路径需在 /:id 之前注册
		entities.GET("/search", h.Entities.Search)
		entities.POST("", write, h.Entities.Create)
		entities.GET("/:id", h.Entities.Get)
		entities.PUT("/:id", write, h.Entities.Update)
		entities.DELETE("/:id", write, h.Entities.Delete)
	}

	labels := apiV1.Group("/labels")
	{
		labels.GET("", h.Labels.List)
		labels.POST("", write, h.Labels.Create)
		labels.GET("/:id", h.Labels.Get)
		labels.PUT("/:id", write, h.Labels.Update)
		labels.DELETE("/:id", write, h.Labels.Delete)
	}

	relations := apiV1.Group("/relations")
	{
		relations.POST("", write, h.Relations.Create)
		relations.GET("/:id", h.Relations.Get)
		relations.PUT("/:id", write, h.Relations.Update)
		relations.DELETE("/:id", write, h.Relations.Delete)
	}

	relationLabels := apiV1.Group("/relation-labels")
	{
		relationLabels.GET("", h.RelationLabels.List)
		relationLabels.POST("", write, h.RelationLabels.Create)
		relationLabels.GET("/:id", h.RelationLabels.Get)
		relationLabels.PUT("/:id", write, h.RelationLabels.Update)
		relationLabels.DELETE("/:id", write, h.RelationLabels.Delete)
	}

	prompts := apiV1.Group("/prompts")
	{
		prompts.GET("", h.Prompts.List)
		prompts.POST("", write, h.Prompts.Create)
		prompts.GET("/:id", h.Prompts.Get)
		prompts.PUT("/:id", write, h.Prompts.Update)
		prompts.DELETE("/:id", write, h.Prompts.Delete)
		prompts.POST("/:id/activate", write, h.Prompts.Activate)
		prompts.POST("/:id/deactivate", write, h.Prompts.Deactivate)
	}

	ai := apiV1.Group("/ai")
	{
		ai.POST("/extract/:documentId", write, h.AI.Extract)
	}
	return r
}
