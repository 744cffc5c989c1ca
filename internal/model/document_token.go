package model

import "time"

// DocumentToken 对应于数据库中的 document_tokens 表，每条记录是文档中的一个字符。
// IsEntity 与 EntityID 只由标注同步逻辑维护，不接受外部直接写入。
type DocumentToken struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint      `gorm:"not null;uniqueIndex:idx_document_token_index,priority:1" json:"documentId"`
	TokenIndex int       `gorm:"not null;uniqueIndex:idx_document_token_index,priority:2" json:"tokenIndex"`
	TokenText  string    `gorm:"type:varchar(16);not null" json:"tokenText"`
	IsEntity   bool      `gorm:"not null;default:false" json:"isEntity"`
	EntityID   *uint     `gorm:"index" json:"entityId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentToken) TableName() string {
	return "document_tokens"
}

// TokenTexts 按顺序返回 token 文本。
func TokenTexts(tokens []DocumentToken) []string {
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.TokenText
	}
	return texts
}
