// Package tasks 定义了通过 Kafka 传递的异步任务结构。
package tasks

import "fmt"

// ExtractionTask 表示一次异步的实体自动抽取请求。
type ExtractionTask struct {
	RequestID   string `json:"request_id"`
	DocumentID  uint   `json:"document_id"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// AttemptsKey 返回记录该任务失败次数的 Redis key。
func (t ExtractionTask) AttemptsKey() string {
	return fmt.Sprintf("kafka:attempts:extract:%s", t.RequestID)
}
