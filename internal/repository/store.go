// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合了标注相关的全部仓库，并提供事务边界。
// 在 Transaction 回调中拿到的 Store 上的所有操作共享同一个事务。
type Store interface {
	Documents() DocumentRepository
	Tokens() DocumentTokenRepository
	Entities() EntityItemRepository
	Labels() EntityLabelRepository
	Relations() RelationRepository
	RelationLabels() RelationLabelRepository
	Prompts() PromptTemplateRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

var _ Store = (*GormStore)(nil)

// GormStore 是基于 gorm 的 Store 实现。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建一个新的 GormStore 实例。
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Documents() DocumentRepository {
	return NewDocumentRepository(s.db)
}

func (s *GormStore) Tokens() DocumentTokenRepository {
	return NewDocumentTokenRepository(s.db)
}

func (s *GormStore) Entities() EntityItemRepository {
	return NewEntityItemRepository(s.db)
}

func (s *GormStore) Labels() EntityLabelRepository {
	return NewEntityLabelRepository(s.db)
}

func (s *GormStore) Relations() RelationRepository {
	return NewRelationRepository(s.db)
}

func (s *GormStore) RelationLabels() RelationLabelRepository {
	return NewRelationLabelRepository(s.db)
}

func (s *GormStore) Prompts() PromptTemplateRepository {
	return NewPromptTemplateRepository(s.db)
}

// Transaction 在一个数据库事务中执行 fn，fn 返回错误时回滚。
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
