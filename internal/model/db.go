package model

import "gorm.io/gorm"

// Migrate 自动迁移所有标注相关的表结构。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Document{},
		&DocumentToken{},
		&EntityItem{},
		&EntityLabel{},
		&Relation{},
		&RelationLabel{},
		&PromptTemplate{},
	)
}
