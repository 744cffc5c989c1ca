package model

import (
	"time"

	"gorm.io/gorm"
)

// RelationLabel 对应于数据库中的 relation_labels 表。
type RelationLabel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LabelName      string    `gorm:"type:varchar(100);not null" json:"labelName"`
	NormalizedName string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"-"`
	Description    string    `gorm:"type:text" json:"description"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (RelationLabel) TableName() string {
	return "relation_labels"
}

// BeforeSave 在写库前同步 NormalizedName。
func (l *RelationLabel) BeforeSave(_ *gorm.DB) error {
	l.NormalizedName = NormalizeLabelName(l.LabelName)
	return nil
}
