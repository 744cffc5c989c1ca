package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
)

// EntityHandler 负责处理实体标注及提及检索的 API 请求。
type EntityHandler struct {
	entityService service.EntityItemService
	searchService service.SearchService
}

// NewEntityHandler 创建一个新的 EntityHandler 实例。
func NewEntityHandler(entityService service.EntityItemService, searchService service.SearchService) *EntityHandler {
	return &EntityHandler{entityService: entityService, searchService: searchService}
}

func (h *EntityHandler) Get(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	item, err := h.entityService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取实体", err)
		return
	}
	ok(c, "获取实体成功", item)
}

// ListByDocument 返回文档下的全部实体。
func (h *EntityHandler) ListByDocument(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	items, err := h.entityService.ListByDocument(c.Request.Context(), id)
	if err != nil {
		failWithError(c, "获取实体列表", err)
		return
	}
	ok(c, "获取实体列表成功", items)
}

func (h *EntityHandler) Create(c *gin.Context) {
	var in service.EntityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	item, err := h.entityService.Create(c.Request.Context(), in)
	if err != nil {
		failWithError(c, "创建实体", err)
		return
	}
	ok(c, "创建实体成功", item)
}

func (h *EntityHandler) Update(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	var in service.EntityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数")
		return
	}
	item, err := h.entityService.Update(c.Request.Context(), id, in)
	if err != nil {
		failWithError(c, "更新实体", err)
		return
	}
	ok(c, "更新实体成功", item)
}

func (h *EntityHandler) Delete(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		return
	}
	if err := h.entityService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, "删除实体", err)
		return
	}
	ok(c, "删除实体成功", nil)
}

// Search 检索实体提及，支持 q、documentId、size 查询参数。
func (h *EntityHandler) Search(c *gin.Context) {
	var documentID uint
	if raw := c.Query("documentId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "无效的 documentId")
			return
		}
		documentID = uint(v)
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))

	results, err := h.searchService.SearchMentions(c.Request.Context(), c.Query("q"), documentID, size)
	if err != nil {
		failWithError(c, "检索实体", err)
		return
	}
	ok(c, "检索实体成功", results)
}
