package model

import "time"

// EntityItem 对应于数据库中的 entity_items 表，表示文档 token 序列上的一段实体标注。
// TokenStart 与 TokenEnd 均为闭区间端点。
type EntityItem struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint      `gorm:"not null;index:idx_entity_document_span,priority:1" json:"documentId"`
	LabelID    uint      `gorm:"index" json:"labelId"`
	Text       string    `gorm:"type:text" json:"text"`
	TokenStart int       `gorm:"not null;index:idx_entity_document_span,priority:2" json:"tokenStart"`
	TokenEnd   int       `gorm:"not null;index:idx_entity_document_span,priority:3" json:"tokenEnd"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (EntityItem) TableName() string {
	return "entity_items"
}

// Covers 判断 token 下标是否落在实体区间内。
func (e EntityItem) Covers(index int) bool {
	return e.TokenStart <= index && index <= e.TokenEnd
}
