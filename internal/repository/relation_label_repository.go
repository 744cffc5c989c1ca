package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// RelationLabelRepository 定义了对 relation_labels 表的数据操作接口。
type RelationLabelRepository interface {
	FindByID(ctx context.Context, id uint) (*model.RelationLabel, error)
	FindAll(ctx context.Context) ([]model.RelationLabel, error)
	Create(ctx context.Context, label *model.RelationLabel) error
	Update(ctx context.Context, label *model.RelationLabel) error
	Delete(ctx context.Context, id uint) error
}

type relationLabelRepository struct {
	db *gorm.DB
}

// NewRelationLabelRepository 创建一个新的 RelationLabelRepository 实例。
func NewRelationLabelRepository(db *gorm.DB) RelationLabelRepository {
	return &relationLabelRepository{db: db}
}

func (r *relationLabelRepository) FindByID(ctx context.Context, id uint) (*model.RelationLabel, error) {
	var label model.RelationLabel
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *relationLabelRepository) FindAll(ctx context.Context) ([]model.RelationLabel, error) {
	var labels []model.RelationLabel
	err := r.db.WithContext(ctx).Order("id asc").Find(&labels).Error
	return labels, err
}

func (r *relationLabelRepository) Create(ctx context.Context, label *model.RelationLabel) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *relationLabelRepository) Update(ctx context.Context, label *model.RelationLabel) error {
	return r.db.WithContext(ctx).Save(label).Error
}

func (r *relationLabelRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.RelationLabel{}, id).Error
}
