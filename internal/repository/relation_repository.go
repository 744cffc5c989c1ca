package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// RelationRepository 定义了对 relations 表的数据操作接口。
type RelationRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Relation, error)
	FindByDocumentID(ctx context.Context, documentID uint) ([]model.Relation, error)
	CountByLabelID(ctx context.Context, labelID uint) (int64, error)
	Create(ctx context.Context, relation *model.Relation) error
	Update(ctx context.Context, relation *model.Relation) error
	Delete(ctx context.Context, id uint) error
	// DeleteByEntityIDs 删除以这些实体为头或尾的关系，返回删除的行数。
	DeleteByEntityIDs(ctx context.Context, entityIDs []uint) (int64, error)
	DeleteByDocumentID(ctx context.Context, documentID uint) error
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository 创建一个新的 RelationRepository 实例。
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) FindByID(ctx context.Context, id uint) (*model.Relation, error) {
	var relation model.Relation
	if err := r.db.WithContext(ctx).First(&relation, id).Error; err != nil {
		return nil, err
	}
	return &relation, nil
}

// FindByDocumentID 按 id 升序返回文档内的全部关系。
func (r *relationRepository) FindByDocumentID(ctx context.Context, documentID uint) ([]model.Relation, error) {
	var relations []model.Relation
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Order("id asc").Find(&relations).Error
	return relations, err
}

func (r *relationRepository) CountByLabelID(ctx context.Context, labelID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Relation{}).Where("relation_label_id = ?", labelID).Count(&count).Error
	return count, err
}

func (r *relationRepository) Create(ctx context.Context, relation *model.Relation) error {
	return r.db.WithContext(ctx).Create(relation).Error
}

func (r *relationRepository) Update(ctx context.Context, relation *model.Relation) error {
	return r.db.WithContext(ctx).Save(relation).Error
}

func (r *relationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Relation{}, id).Error
}

func (r *relationRepository) DeleteByEntityIDs(ctx context.Context, entityIDs []uint) (int64, error) {
	if len(entityIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("head_entity_id IN ? OR tail_entity_id IN ?", entityIDs, entityIDs).
		Delete(&model.Relation{})
	return res.RowsAffected, res.Error
}

func (r *relationRepository) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.Relation{}).Error
}
