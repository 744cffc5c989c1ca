package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// DocumentTokenRepository 定义了对 document_tokens 表的数据操作接口。
type DocumentTokenRepository interface {
	FindByDocumentID(ctx context.Context, documentID uint) ([]model.DocumentToken, error)
	BatchCreate(ctx context.Context, tokens []model.DocumentToken) error
	DeleteByDocumentID(ctx context.Context, documentID uint) error
	// Update 只写回 token 的标记字段。
	Update(ctx context.Context, token *model.DocumentToken) error
	Create(ctx context.Context, token *model.DocumentToken) error
}

type documentTokenRepository struct {
	db *gorm.DB
}

// NewDocumentTokenRepository 创建一个新的 DocumentTokenRepository 实例。
func NewDocumentTokenRepository(db *gorm.DB) DocumentTokenRepository {
	return &documentTokenRepository{db: db}
}

// FindByDocumentID 按 token 下标顺序返回文档的全部 token。
func (r *documentTokenRepository) FindByDocumentID(ctx context.Context, documentID uint) ([]model.DocumentToken, error) {
	var tokens []model.DocumentToken
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("token_index asc").
		Find(&tokens).Error
	return tokens, err
}

// BatchCreate 批量插入 token 记录。
func (r *documentTokenRepository) BatchCreate(ctx context.Context, tokens []model.DocumentToken) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(tokens, 500).Error // 每500条记录一批
}

// DeleteByDocumentID 删除文档的全部 token。
func (r *documentTokenRepository) DeleteByDocumentID(ctx context.Context, documentID uint) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.DocumentToken{}).Error
}

func (r *documentTokenRepository) Update(ctx context.Context, token *model.DocumentToken) error {
	return r.db.WithContext(ctx).Model(&model.DocumentToken{}).
		Where("id = ?", token.ID).
		Updates(map[string]interface{}{
			"is_entity": token.IsEntity,
			"entity_id": token.EntityID,
		}).Error
}

// Create 插入单个 token 记录。
func (r *documentTokenRepository) Create(ctx context.Context, token *model.DocumentToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}
