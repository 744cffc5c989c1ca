package model

import "time"

// Relation 对应于数据库中的 relations 表，表示同一文档内两个实体之间的有向关系。
type Relation struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID      uint      `gorm:"not null;index" json:"documentId"`
	RelationLabelID uint      `gorm:"not null;index;uniqueIndex:idx_relation_triple,priority:3" json:"relationLabelId"`
	HeadEntityID    uint      `gorm:"not null;uniqueIndex:idx_relation_triple,priority:1" json:"headEntityId"`
	TailEntityID    uint      `gorm:"not null;index;uniqueIndex:idx_relation_triple,priority:2" json:"tailEntityId"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Relation) TableName() string {
	return "relations"
}

// Involves 判断实体是否为关系的头或尾。
func (r Relation) Involves(entityID uint) bool {
	return r.HeadEntityID == entityID || r.TailEntityID == entityID
}
