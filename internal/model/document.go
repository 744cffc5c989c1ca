// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Document 对应于数据库中的 documents 表。
// Content 的字符级 token 序列保存在 document_tokens 表中，由服务层派生维护。
type Document struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title   string `gorm:"type:varchar(255)" json:"title"`
	Content string `gorm:"type:longtext" json:"content"`
	// Version 每次更新递增，用于乐观并发控制。
	Version   int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}
