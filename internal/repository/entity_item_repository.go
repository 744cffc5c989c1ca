package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// EntityItemRepository 定义了对 entity_items 表的数据操作接口。
type EntityItemRepository interface {
	FindByID(ctx context.Context, id uint) (*model.EntityItem, error)
	FindByDocumentID(ctx context.Context, documentID uint) ([]model.EntityItem, error)
	FindByDocumentIDAndTokenRange(ctx context.Context, documentID uint, start, end int) ([]model.EntityItem, error)
	Create(ctx context.Context, item *model.EntityItem) error
	Update(ctx context.Context, item *model.EntityItem) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteByDocumentID(ctx context.Context, documentID uint) error
}

type entityItemRepository struct {
	db *gorm.DB
}

// NewEntityItemRepository 创建一个新的 EntityItemRepository 实例。
func NewEntityItemRepository(db *gorm.DB) EntityItemRepository {
	return &entityItemRepository{db: db}
}

// FindByID 根据 ID 查找实体。
func (r *entityItemRepository) FindByID(ctx context.Context, id uint) (*model.EntityItem, error) {
	var item model.EntityItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByDocumentID 按 ID 升序返回文档的全部实体。
func (r *entityItemRepository) FindByDocumentID(ctx context.Context, documentID uint) ([]model.EntityItem, error) {
	var items []model.EntityItem
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// FindByDocumentIDAndTokenRange 查找区间与给定区间完全相同的实体。
func (r *entityItemRepository) FindByDocumentIDAndTokenRange(ctx context.Context, documentID uint, start, end int) ([]model.EntityItem, error) {
	var items []model.EntityItem
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND token_start = ? AND token_end = ?", documentID, start, end).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// Create 插入一个新的实体记录。
func (r *entityItemRepository) Create(ctx context.Context, item *model.EntityItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 保存实体的全部字段。
func (r *entityItemRepository) Update(ctx context.Context, item *model.EntityItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *entityItemRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.EntityItem{}, id).Error
}

func (r *entityItemRepository) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.EntityItem{}).Error
}
