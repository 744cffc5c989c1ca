package model

// EntityMention 定义了存储在 Elasticsearch 中的实体提及文档。
type EntityMention struct {
	MentionID     string `json:"mention_id"` // 唯一标识，documentId + entityId
	EntityID      uint   `json:"entity_id"`
	DocumentID    uint   `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Text          string `json:"text"`
	LabelID       uint   `json:"label_id"`
	LabelName     string `json:"label_name"`
	TokenStart    int    `json:"token_start"`
	TokenEnd      int    `json:"token_end"`
}

// MentionSearchResult 定义了返回给前端的提及检索结果。
type MentionSearchResult struct {
	EntityMention
	Score float64 `json:"score"`
}
