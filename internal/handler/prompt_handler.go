package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
)

// PromptHandler 负责处理提示词模板的 API 请求。
type PromptHandler struct {
	promptService service.PromptTemplateService
}

// NewPromptHandler 创建一个新的 PromptHandler 实例。
func NewPromptHandler(promptService service.PromptTemplateService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// List 支持按 taskType 或 model 查询参数过滤。
func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.promptService.List(c.Request.Context(), c.Query("taskType"), c.Query("model"))
	if err != nil {
		failWithError(c, "获取提示词模板列表", err)
		return
	}
	ok(c, "获取提示词模板列表成功", prompts)
}

func (h *PromptHandler) Get(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	p, err := h.promptService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取提示词模板", err)
		return
	}
	ok(c, "获取提示词模板成功", p)
}

func (h *PromptHandler) Create(c *gin.Context) {
	var in service.PromptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	p, err := h.promptService.Create(c.Request.Context(), in)
	if err != nil {
		failWithError(c, "创建提示词模板", err)
		return
	}
	ok(c, "创建提示词模板成功", p)
}

func (h *PromptHandler) Update(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	var in service.PromptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	p, err := h.promptService.Update(c.Request.Context(), id, in)
	if err != nil {
		failWithError(c, "更新提示词模板", err)
		return
	}
	ok(c, "更新提示词模板成功", p)
}

func (h *PromptHandler) Delete(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	if err := h.promptService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, "删除提示词模板", err)
		return
	}
	ok(c, "删除提示词模板成功", nil)
}

func (h *PromptHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *PromptHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *PromptHandler) setActive(c *gin.Context, active bool) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	p, err := h.promptService.SetActive(c.Request.Context(), id, active)
	if err != nil {
		failWithError(c, "切换提示词模板状态", err)
		return
	}
	ok(c, "切换提示词模板状态成功", p)
}
