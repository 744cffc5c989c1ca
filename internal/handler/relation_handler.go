package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
)

// RelationHandler 负责处理实体关系标注的 API 请求。
type RelationHandler struct {
	relationService service.RelationService
}

// NewRelationHandler 创建一个新的 RelationHandler 实例。
func NewRelationHandler(relationService service.RelationService) *RelationHandler {
	return &RelationHandler{relationService: relationService}
}

func (h *RelationHandler) Get(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	rel, err := h.relationService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取关系", err)
		return
	}
	ok(c, "获取关系成功", rel)
}

// ListByDocument 返回文档下的全部关系。
func (h *RelationHandler) ListByDocument(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	rels, err := h.relationService.ListByDocument(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取关系列表", err)
		return
	}
	ok(c, "获取关系列表成功", rels)
}

func (h *RelationHandler) Create(c *gin.Context) {
	var in service.RelationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	rel, err := h.relationService.Create(c.Request.Context(), in)
	if err != nil {
		failWithError(c, "创建关系", err)
		return
	}
	ok(c, "创建关系成功", rel)
}

func (h *RelationHandler) Update(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	var in service.RelationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	rel, err := h.relationService.Update(c.Request.Context(), id, in)
	if err != nil {
		failWithError(c, "更新关系", err)
		return
	}
	ok(c, "更新关系成功", rel)
}

func (h *RelationHandler) Delete(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	if err := h.relationService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, "删除关系", err)
		return
	}
	ok(c, "删除关系成功", nil)
}
