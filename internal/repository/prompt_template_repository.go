package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// PromptTemplateRepository 定义了对 prompt_templates 表的数据操作接口。
type PromptTemplateRepository interface {
	FindByID(ctx context.Context, id uint) (*model.PromptTemplate, error)
	FindAll(ctx context.Context) ([]model.PromptTemplate, error)
	FindByTaskType(ctx context.Context, taskType string) ([]model.PromptTemplate, error)
	FindByModel(ctx context.Context, modelName string) ([]model.PromptTemplate, error)
	// FindActive 返回任务类型下启用的模板，没有时返回 gorm.ErrRecordNotFound。
	FindActive(ctx context.Context, taskType string) (*model.PromptTemplate, error)
	Create(ctx context.Context, tmpl *model.PromptTemplate) error
	Update(ctx context.Context, tmpl *model.PromptTemplate) error
	Delete(ctx context.Context, id uint) error
	SetActive(ctx context.Context, id uint, active bool) error
	// DeactivateTaskType 停用任务类型下除 exceptID 以外的所有模板。
	DeactivateTaskType(ctx context.Context, taskType string, exceptID uint) error
}

type promptTemplateRepository struct {
	db *gorm.DB
}

// NewPromptTemplateRepository 创建一个新的 PromptTemplateRepository 实例。
func NewPromptTemplateRepository(db *gorm.DB) PromptTemplateRepository {
	return &promptTemplateRepository{db: db}
}

func (r *promptTemplateRepository) FindByID(ctx context.Context, id uint) (*model.PromptTemplate, error) {
	var tmpl model.PromptTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, id).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *promptTemplateRepository) FindAll(ctx context.Context) ([]model.PromptTemplate, error) {
	var list []model.PromptTemplate
	err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error
	return list, err
}

func (r *promptTemplateRepository) FindByTaskType(ctx context.Context, taskType string) ([]model.PromptTemplate, error) {
	var list []model.PromptTemplate
	err := r.db.WithContext(ctx).Where("task_type = ?", taskType).Order("id asc").Find(&list).Error
	return list, err
}

func (r *promptTemplateRepository) FindByModel(ctx context.Context, modelName string) ([]model.PromptTemplate, error) {
	var list []model.PromptTemplate
	err := r.db.WithContext(ctx).Where("model = ?", modelName).Order("id asc").Find(&list).Error
	return list, err
}

func (r *promptTemplateRepository) FindActive(ctx context.Context, taskType string) (*model.PromptTemplate, error) {
	var tmpl model.PromptTemplate
	err := r.db.WithContext(ctx).
		Where("task_type = ? AND is_active = ?", taskType, true).
		Order("id desc").
		First(&tmpl).Error
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *promptTemplateRepository) Create(ctx context.Context, tmpl *model.PromptTemplate) error {
	return r.db.WithContext(ctx).Create(tmpl).Error
}

func (r *promptTemplateRepository) Update(ctx context.Context, tmpl *model.PromptTemplate) error {
	return r.db.WithContext(ctx).Save(tmpl).Error
}

func (r *promptTemplateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.PromptTemplate{}, id).Error
}

func (r *promptTemplateRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&model.PromptTemplate{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *promptTemplateRepository) DeactivateTaskType(ctx context.Context, taskType string, exceptID uint) error {
	return r.db.WithContext(ctx).Model(&model.PromptTemplate{}).
		Where("task_type = ? AND id <> ? AND is_active = ?", taskType, exceptID, true).
		Update("is_active", false).Error
}
