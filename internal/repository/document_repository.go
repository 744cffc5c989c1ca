package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// DocumentRepository 定义了对 documents 表的数据操作接口。
type DocumentRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Document, error)
	FindAll(ctx context.Context) ([]model.Document, error)
	Create(ctx context.Context, doc *model.Document) error
	// Update 仅当库中版本等于 expectedVersion 时写入标题与内容并将版本加一，
	// 返回是否有记录被更新。expectedVersion 为负数时跳过版本比较。
	Update(ctx context.Context, doc *model.Document, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// FindByID 根据 ID 查找文档。
func (r *documentRepository) FindByID(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAll 按 ID 倒序返回所有文档。
func (r *documentRepository) FindAll(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Order("id desc").Find(&docs).Error
	return docs, err
}

// Create 插入一个新的文档记录。
func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document, expectedVersion int64) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", doc.ID)
	if expectedVersion >= 0 {
		query = query.Where("version = ?", expectedVersion)
	}
	res := query.Updates(map[string]interface{}{
		"title":   doc.Title,
		"content": doc.Content,
		"version": gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete 根据 ID 删除文档。
func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}
