package service

import (
	"context"
	"fmt"
	"strings"

	"doc-annotator-go/internal/model"
)

// RelationLabelService 接口定义了关系标签的管理操作。
type RelationLabelService interface {
	Get(ctx context.Context, id uint) (*model.RelationLabel, error)
	List(ctx context.Context) ([]model.RelationLabel, error)
	Create(ctx context.Context, name, description string) (*model.RelationLabel, error)
	Update(ctx context.Context, id uint, name, description string) (*model.RelationLabel, error)
	// Delete 删除未被任何关系引用的标签，仍被引用时返回 ErrConflict。
	Delete(ctx context.Context, id uint) error
}

type relationLabelService struct {
	deps Dependencies
}

// NewRelationLabelService 创建一个新的 RelationLabelService 实例。
func NewRelationLabelService(deps Dependencies) RelationLabelService {
	return &relationLabelService{deps: deps}
}

func (s *relationLabelService) Get(ctx context.Context, id uint) (*model.RelationLabel, error) {
	label, err := s.deps.Store.RelationLabels().FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "relation label %d", id)
	}
	return label, nil
}

func (s *relationLabelService) List(ctx context.Context) ([]model.RelationLabel, error) {
	return s.deps.Store.RelationLabels().FindAll(ctx)
}

func (s *relationLabelService) Create(ctx context.Context, name, description string) (*model.RelationLabel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("labelName", "标签名称不能为空")
	}
	label := &model.RelationLabel{LabelName: name, Description: description}
	if err := s.deps.Store.RelationLabels().Create(ctx, label); err != nil {
		return nil, mapStoreError(err, "relation label %q", name)
	}
	return label, nil
}

func (s *relationLabelService) Update(ctx context.Context, id uint, name, description string) (*model.RelationLabel, error) {
	label, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		label.LabelName = name
	}
	label.Description = description
	if err := s.deps.Store.RelationLabels().Update(ctx, label); err != nil {
		return nil, mapStoreError(err, "relation label %q", label.LabelName)
	}
	return label, nil
}

func (s *relationLabelService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.deps.Store.Relations().CountByLabelID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("relation label %d is used by %d relations: %w", id, count, ErrConflict)
	}
	return s.deps.Store.RelationLabels().Delete(ctx, id)
}
