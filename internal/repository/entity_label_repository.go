package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// EntityLabelRepository 定义了对 entity_labels 表的数据操作接口。
type EntityLabelRepository interface {
	FindByID(ctx context.Context, id uint) (*model.EntityLabel, error)
	FindAll(ctx context.Context) ([]model.EntityLabel, error)
	FindByNormalizedName(ctx context.Context, normalized string) (*model.EntityLabel, error)
	Create(ctx context.Context, label *model.EntityLabel) error
	Update(ctx context.Context, label *model.EntityLabel) error
	Delete(ctx context.Context, id uint) error
}

type entityLabelRepository struct {
	db *gorm.DB
}

// NewEntityLabelRepository 创建一个新的 EntityLabelRepository 实例。
func NewEntityLabelRepository(db *gorm.DB) EntityLabelRepository {
	return &entityLabelRepository{db: db}
}

// FindByID 根据 ID 查找标签。
func (r *entityLabelRepository) FindByID(ctx context.Context, id uint) (*model.EntityLabel, error) {
	var label model.EntityLabel
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindAll 返回所有标签。
func (r *entityLabelRepository) FindAll(ctx context.Context) ([]model.EntityLabel, error) {
	var labels []model.EntityLabel
	err := r.db.WithContext(ctx).Order("id asc").Find(&labels).Error
	return labels, err
}

// FindByNormalizedName 通过规范化后的名称查找标签，未找到时返回 gorm.ErrRecordNotFound。
func (r *entityLabelRepository) FindByNormalizedName(ctx context.Context, normalized string) (*model.EntityLabel, error) {
	var label model.EntityLabel
	if err := r.db.WithContext(ctx).Where("normalized_name = ?", normalized).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// Create 插入一个新的标签记录。
func (r *entityLabelRepository) Create(ctx context.Context, label *model.EntityLabel) error {
	return r.db.WithContext(ctx).Create(label).Error
}

// Update 更新一个已存在的标签记录。
func (r *entityLabelRepository) Update(ctx context.Context, label *model.EntityLabel) error {
	return r.db.WithContext(ctx).Save(label).Error
}

// Delete 根据 ID 删除标签。
func (r *entityLabelRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.EntityLabel{}, id).Error
}
