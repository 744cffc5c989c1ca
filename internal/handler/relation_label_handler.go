package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
)

// RelationLabelHandler 负责处理关系标签的 API 请求。
type RelationLabelHandler struct {
	labelService service.RelationLabelService
}

func NewRelationLabelHandler(labelService service.RelationLabelService) *RelationLabelHandler {
	return &RelationLabelHandler{labelService: labelService}
}

func (h *RelationLabelHandler) List(c *gin.Context) {
	labels, err := h.labelService.List(c.Request.Context())
	if err != nil {
		failWithError(c, "获取关系标签列表", err)
		return
	}
	ok(c, "获取关系标签列表成功", labels)
}

func (h *RelationLabelHandler) Get(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	label, err := h.labelService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取关系标签", err)
		return
	}
	ok(c, "获取关系标签成功", label)
}

func (h *RelationLabelHandler) Create(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	label, err := h.labelService.Create(c.Request.Context(), req.LabelName, req.Description)
	if err != nil {
		failWithError(c, "创建关系标签", err)
		return
	}
	ok(c, "创建关系标签成功", label)
}

func (h *RelationLabelHandler) Update(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	label, err := h.labelService.Update(c.Request.Context(), id, req.LabelName, req.Description)
	if err != nil {
		failWithError(c, "更新关系标签", err)
		return
	}
	ok(c, "更新关系标签成功", label)
}

// Delete 删除关系标签，仍被关系引用时返回 409。
func (h *RelationLabelHandler) Delete(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	if err := h.labelService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, "删除关系标签", err)
		return
	}
	ok(c, "删除关系标签成功", nil)
}
