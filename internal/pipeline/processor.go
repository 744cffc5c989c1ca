// Package pipeline 定义了异步抽取任务的处理流程。
package pipeline

import (
	"context"
	"errors"

	"doc-annotator-go/internal/service"
	"doc-annotator-go/pkg/log"
	"doc-annotator-go/pkg/tasks"
)

// Processor 消费抽取任务并调用 ExtractionService。
type Processor struct {
	extraction service.ExtractionService
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(extraction service.ExtractionService) *Processor {
	return &Processor{extraction: extraction}
}

// Process 执行一次抽取。文档已不存在的任务视为完成，不再重试；
// 文档正被其他操作修改时返回错误，由消费者稍后重试。
func (p *Processor) Process(ctx context.Context, task tasks.ExtractionTask) error {
	log.Infof("[Processor] 开始处理抽取任务, requestId=%s, documentId=%d", task.RequestID, task.DocumentID)

	result, err := p.extraction.AutoExtract(ctx, task.DocumentID)
	if errors.Is(err, service.ErrNotFound) {
		log.Warnf("[Processor] 文档 %d 不存在, 丢弃任务 %s", task.DocumentID, task.RequestID)
		return nil
	}
	if err != nil {
		return err
	}

	log.Infof("[Processor] 抽取任务完成, requestId=%s, 候选 %d, 新建 %d, 跳过 %d",
		task.RequestID, len(result.Candidates), len(result.Created), len(result.Skipped))
	return nil
}
