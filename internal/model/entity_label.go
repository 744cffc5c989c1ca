package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// EntityLabel 对应于数据库中的 entity_labels 表。
type EntityLabel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LabelName string `gorm:"type:varchar(100);not null" json:"labelName"`
	// NormalizedName 是小写去空白后的名称，用于大小写不敏感的唯一查找。
	NormalizedName string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"-"`
	Description    string    `gorm:"type:text" json:"description"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (EntityLabel) TableName() string {
	return "entity_labels"
}

// BeforeSave 在写库前同步 NormalizedName。
func (l *EntityLabel) BeforeSave(_ *gorm.DB) error {
	l.NormalizedName = NormalizeLabelName(l.LabelName)
	return nil
}

// NormalizeLabelName 将标签名转换为查找用的规范形式。
func NormalizeLabelName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
