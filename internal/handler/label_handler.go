package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
)

// LabelHandler 负责处理实体标签的 API 请求。
type LabelHandler struct {
	labelService service.EntityLabelService
}

// NewLabelHandler 创建一个新的 LabelHandler 实例。
func NewLabelHandler(labelService service.EntityLabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

type labelRequest struct {
	LabelName   string `json:"labelName"`
	Description string `json:"description"`
}

func (h *LabelHandler) List(c *gin.Context) {
	labels, err := h.labelService.List(c.Request.Context())
	if err != nil {
		failWithError(c, "获取标签列表", err)
		return
	}
	ok(c, "获取标签列表成功", labels)
}

func (h *LabelHandler) Get(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	label, err := h.labelService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取标签", err)
		return
	}
	ok(c, "获取标签成功", label)
}

func (h *LabelHandler) Create(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	label, err := h.labelService.Create(c.Request.Context(), req.LabelName, req.Description)
	if err != nil {
		failWithError(c, "创建标签", err)
		return
	}
	ok(c, "创建标签成功", label)
}

func (h *LabelHandler) Update(c *gin.Context) {
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
		failWithError(c, "更新标签", err)
		return
	}
	ok(c, "更新标签成功", label)
}

func (h *LabelHandler) Delete(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	if err := h.labelService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, "删除标签", err)
		return
	}
	ok(c, "删除标签成功", nil)
}
