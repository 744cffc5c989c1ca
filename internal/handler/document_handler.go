package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
)

// DocumentHandler 负责处理文档及其 token 相关的 API 请求。
type DocumentHandler struct {
	docService   service.DocumentService
	tokenService service.DocumentTokenService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docService service.DocumentService, tokenService service.DocumentTokenService) *DocumentHandler {
	return &DocumentHandler{docService: docService, tokenService: tokenService}
}

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	// Version 为客户端读到的版本；省略时不做并发校验。
	Version *int64 `json:"version"`
}

// List 返回所有文档。
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List(c.Request.Context())
	if err != nil {
		failWithError(c, "获取文档列表", err)
		return
	}
	ok(c, "获取文档列表成功", docs)
}

// Get 返回单个文档。
func (h *DocumentHandler) Get(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	doc, err := h.docService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取文档", err)
		return
	}
	ok(c, "获取文档成功", doc)
}

// Create 新建文档并生成 token。
func (h *DocumentHandler) Create(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	doc, err := h.docService.Create(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		failWithError(c, "创建文档", err)
		return
	}
	ok(c, "创建文档成功", doc)
}

// Update 修改文档内容，已有实体会随内容迁移。
func (h *DocumentHandler) Update(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	expected := int64(-1)
	if req.Version != nil {
		expected = *req.Version
	}
	doc, err := h.docService.Update(c.Request.Context(), id, req.Title, req.Content, expected)
	if err != nil {
		failWithError(c, "更新文档", err)
		return
	}
	ok(c, "更新文档成功", doc)
}

// Delete 删除文档及其 token 与实体。
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	if err := h.docService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, "删除文档", err)
		return
	}
	ok(c, "删除文档成功", nil)
}

// ListTokens 返回文档的 token 序列。
func (h *DocumentHandler) ListTokens(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	tokens, err := h.tokenService.ListByDocument(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取文档 token", err)
		return
	}
	ok(c, "获取文档 token 成功", tokens)
}

// ResyncTokens 按实体全量重建 token 标记。
func (h *DocumentHandler) ResyncTokens(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	changed, err := h.tokenService.Resync(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "重同步 token 标记", err)
		return
	}
	ok(c, "重同步 token 标记成功", gin.H{"changed": changed})
}
