package service

import (
	"context"
	"fmt"

	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/log"
)

// RelationInput 是创建或修改关系时的输入。修改时零值字段保持原值。
type RelationInput struct {
	DocumentID      *uint `json:"documentId"`
	RelationLabelID uint  `json:"relationLabelId"`
	HeadEntityID    uint  `json:"headEntityId"`
	TailEntityID    uint  `json:"tailEntityId"`
}

// RelationService 管理同一文档内实体之间的关系标注。
// 实体被删除（包括文档编辑导致的删除）时，引用它的关系随之删除。
type RelationService interface {
	Get(ctx context.Context, id uint) (*model.Relation, error)
	ListByDocument(ctx context.Context, documentID uint) ([]model.Relation, error)
	Create(ctx context.Context, in RelationInput) (*model.Relation, error)
	Update(ctx context.Context, id uint, in RelationInput) (*model.Relation, error)
	Delete(ctx context.Context, id uint) error
}

type relationService struct {
	deps Dependencies
}

// NewRelationService 创建一个新的 RelationService 实例。
func NewRelationService(deps Dependencies) RelationService {
	return &relationService{deps: deps}
}

func (s *relationService) Get(ctx context.Context, id uint) (*model.Relation, error) {
	relation, err := s.deps.Store.Relations().FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "relation %d", id)
	}
	return relation, nil
}

func (s *relationService) ListByDocument(ctx context.Context, documentID uint) ([]model.Relation, error) {
	if _, err := findDocument(ctx, s.deps.Store, documentID); err != nil {
		return nil, err
	}
	return s.deps.Store.Relations().FindByDocumentID(ctx, documentID)
}

func (s *relationService) Create(ctx context.Context, in RelationInput) (*model.Relation, error) {
	if in.DocumentID == nil || *in.DocumentID == 0 {
		return nil, invalid("documentId", "文档ID不能为空")
	}
	relation := &model.Relation{
		DocumentID:      *in.DocumentID,
		RelationLabelID: in.RelationLabelID,
		HeadEntityID:    in.HeadEntityID,
		TailEntityID:    in.TailEntityID,
	}

	release, err := s.deps.lockDocument(ctx, relation.DocumentID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		if err := validateRelation(ctx, tx, relation); err != nil {
			return err
		}
		if err := tx.Relations().Create(ctx, relation); err != nil {
			return mapStoreError(err, "relation %d->%d", relation.HeadEntityID, relation.TailEntityID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("关系创建成功, relationId=%d, documentId=%d, %d -[%d]-> %d",
		relation.ID, relation.DocumentID, relation.HeadEntityID, relation.RelationLabelID, relation.TailEntityID)
	return relation, nil
}

// Update 修改关系的标签或头尾实体，关系不能移动到其他文档。
func (s *relationService) Update(ctx context.Context, id uint, in RelationInput) (*model.Relation, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DocumentID != nil && *in.DocumentID != current.DocumentID {
		return nil, invalid("documentId", "不允许修改关系所属文档")
	}

	release, err := s.deps.lockDocument(ctx, current.DocumentID)
	if err != nil {
		return nil, err
	}
	defer release()

	var relation *model.Relation
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.Relations().FindByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "relation %d", id)
		}
		relation = found
		if in.RelationLabelID != 0 {
			relation.RelationLabelID = in.RelationLabelID
		}
		if in.HeadEntityID != 0 {
			relation.HeadEntityID = in.HeadEntityID
		}
		if in.TailEntityID != 0 {
			relation.TailEntityID = in.TailEntityID
		}
		if err := validateRelation(ctx, tx, relation); err != nil {
			return err
		}
		if err := tx.Relations().Update(ctx, relation); err != nil {
			return mapStoreError(err, "relation %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return relation, nil
}

func (s *relationService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.deps.Store.Relations().Delete(ctx, id)
}

// validateRelation 校验文档存在、标签存在，且头尾是该文档内两个不同的实体。
func validateRelation(ctx context.Context, tx repository.Store, r *model.Relation) error {
	if _, err := findDocument(ctx, tx, r.DocumentID); err != nil {
		return err
	}
	if r.RelationLabelID == 0 {
		return invalid("relationLabelId", "关系标签不能为空")
	}
	if _, err := tx.RelationLabels().FindByID(ctx, r.RelationLabelID); err != nil {
		if isRecordNotFound(err) {
			return invalid("relationLabelId", fmt.Sprintf("关系标签 %d 不存在", r.RelationLabelID))
		}
		return err
	}
	if r.HeadEntityID == 0 || r.TailEntityID == 0 {
		return invalid("headEntityId", "头尾实体不能为空")
	}
	if r.HeadEntityID == r.TailEntityID {
		return invalid("tailEntityId", "头尾实体不能相同")
	}
	ends := []struct {
		field string
		id    uint
	}{{"headEntityId", r.HeadEntityID}, {"tailEntityId", r.TailEntityID}}
	for _, end := range ends {
		field, entityID := end.field, end.id
		entity, err := tx.Entities().FindByID(ctx, entityID)
		if err != nil {
			if isRecordNotFound(err) {
				return invalid(field, fmt.Sprintf("实体 %d 不存在", entityID))
			}
			return err
		}
		if entity.DocumentID != r.DocumentID {
			return invalid(field, fmt.Sprintf("实体 %d 不属于文档 %d", entityID, r.DocumentID))
		}
	}
	return nil
}
