package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"doc-annotator-go/internal/model"
)

// EntityLabelService 接口定义了实体标签的管理操作。
type EntityLabelService interface {
	Get(ctx context.Context, id uint) (*model.EntityLabel, error)
	List(ctx context.Context) ([]model.EntityLabel, error)
	Create(ctx context.Context, name, description string) (*model.EntityLabel, error)
	Update(ctx context.Context, id uint, name, description string) (*model.EntityLabel, error)
	Delete(ctx context.Context, id uint) error
	// FindOrCreate 按规范化名称查找标签，不存在时创建。
	FindOrCreate(ctx context.Context, name, description string) (*model.EntityLabel, error)
}

type entityLabelService struct {
	deps Dependencies
}

// NewEntityLabelService 创建一个新的 EntityLabelService 实例。
func NewEntityLabelService(deps Dependencies) EntityLabelService {
	return &entityLabelService{deps: deps}
}

func (s *entityLabelService) Get(ctx context.Context, id uint) (*model.EntityLabel, error) {
	label, err := s.deps.Store.Labels().FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "label %d", id)
	}
	return label, nil
}

func (s *entityLabelService) List(ctx context.Context) ([]model.EntityLabel, error) {
	return s.deps.Store.Labels().FindAll(ctx)
}

func (s *entityLabelService) Create(ctx context.Context, name, description string) (*model.EntityLabel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("labelName", "标签名称不能为空")
	}
	label := &model.EntityLabel{LabelName: name, Description: description}
	if err := s.deps.Store.Labels().Create(ctx, label); err != nil {
		return nil, mapStoreError(err, "label %q", name)
	}
	return label, nil
}

func (s *entityLabelService) Update(ctx context.Context, id uint, name, description string) (*model.EntityLabel, error) {
	label, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		label.LabelName = name
	}
	label.Description = description
	if err := s.deps.Store.Labels().Update(ctx, label); err != nil {
		return nil, mapStoreError(err, "label %q", label.LabelName)
	}
	return label, nil
}

func (s *entityLabelService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.deps.Store.Labels().Delete(ctx, id)
}

func (s *entityLabelService) FindOrCreate(ctx context.Context, name, description string) (*model.EntityLabel, error) {
	normalized := model.NormalizeLabelName(name)
	if normalized == "" {
		return nil, invalid("labelName", "标签名称不能为空")
	}
	labels := s.deps.Store.Labels()
	label, err := labels.FindByNormalizedName(ctx, normalized)
	if err == nil {
		return label, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	label = &model.EntityLabel{LabelName: strings.TrimSpace(name), Description: description}
	err = labels.Create(ctx, label)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发创建了同名标签，读取已存在的那条
		return labels.FindByNormalizedName(ctx, normalized)
	}
	if err != nil {
		return nil, err
	}
	return label, nil
}
