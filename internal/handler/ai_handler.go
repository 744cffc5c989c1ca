package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"doc-annotator-go/internal/service"
	"doc-annotator-go/pkg/log"
	"doc-annotator-go/pkg/tasks"
	"doc-annotator-go/pkg/token"
)

// TaskProducer 投递异步抽取任务。
type TaskProducer interface {
	ProduceExtractionTask(ctx context.Context, task tasks.ExtractionTask) error
}

// AIHandler 负责处理大模型自动抽取相关的 API 请求。
type AIHandler struct {
	extraction service.ExtractionService
	docService service.DocumentService
	producer   TaskProducer
}

// NewAIHandler 创建一个新的 AIHandler 实例，producer 为 nil 时不支持异步模式。
func NewAIHandler(extraction service.ExtractionService, docService service.DocumentService, producer TaskProducer) *AIHandler {
	return &AIHandler{extraction: extraction, docService: docService, producer: producer}
}

// Extract 对文档执行自动抽取。async=true 时只投递任务并立即返回 requestId。
func (h *AIHandler) Extract(c *gin.Context) {
	id, valid := uintParam(c, "documentId")
	if !valid {
		return
	}
	ctx := c.Request.Context()

	if c.Query("async") != "true" {
		result, err := h.extraction.AutoExtract(ctx, id)
		if err != nil {
			failWithError(c, "自动抽取实体", err)
			return
		}
		ok(c, "自动抽取实体完成", result)
		return
	}

	if h.producer == nil {
		fail(c, http.StatusServiceUnavailable, "未配置异步任务队列")
		return
	}
	if _, err := h.docService.Get(ctx, id); err != nil {
		failWithError(c, "提交抽取任务", err)
		return
	}
	task := tasks.ExtractionTask{
		RequestID:   uuid.NewString(),
		DocumentID:  id,
		RequestedBy: requester(c),
	}
	if err := h.producer.ProduceExtractionTask(ctx, task); err != nil {
		log.Error("发送抽取任务到 Kafka 失败", err)
		fail(c, http.StatusInternalServerError, "提交抽取任务失败")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"code":    http.StatusAccepted,
		"message": "抽取任务已提交",
		"data":    task,
	})
}

func requester(c *gin.Context) string {
	if v, exists := c.Get("claims"); exists {
		if claims, ok := v.(*token.CustomClaims); ok {
			return claims.Subject
		}
	}
	return ""
}
