package service

import (
	"context"
	"fmt"
	"strings"

	"doc-annotator-go/internal/annotate"
	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/log"
)

// EntityInput 是创建或修改实体时的输入，指针字段用于区分"未提供"与零值。
type EntityInput struct {
	DocumentID *uint  `json:"documentId"`
	LabelID    uint   `json:"labelId"`
	Text       string `json:"text"`
	TokenStart *int   `json:"tokenStart"`
	TokenEnd   *int   `json:"tokenEnd"`
}

// EntityItemService 接口定义了实体标注相关的业务操作。
type EntityItemService interface {
	Get(ctx context.Context, id uint) (*model.EntityItem, error)
	ListByDocument(ctx context.Context, documentID uint) ([]model.EntityItem, error)
	Create(ctx context.Context, in EntityInput) (*model.EntityItem, error)
	Update(ctx context.Context, id uint, in EntityInput) (*model.EntityItem, error)
	Delete(ctx context.Context, id uint) error
}

type entityItemService struct {
	deps Dependencies
}

// NewEntityItemService 创建一个新的 EntityItemService 实例。
func NewEntityItemService(deps Dependencies) EntityItemService {
	return &entityItemService{deps: deps}
}

func (s *entityItemService) Get(ctx context.Context, id uint) (*model.EntityItem, error) {
	item, err := s.deps.Store.Entities().FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "entity %d", id)
	}
	return item, nil
}

// ListByDocument 返回文档的全部实体，文档不存在时返回 ErrNotFound。
func (s *entityItemService) ListByDocument(ctx context.Context, documentID uint) ([]model.EntityItem, error) {
	if _, err := findDocument(ctx, s.deps.Store, documentID); err != nil {
		return nil, err
	}
	return s.deps.Store.Entities().FindByDocumentID(ctx, documentID)
}

// Create 校验并新建实体，随后为其覆盖的 token 打标记。
func (s *entityItemService) Create(ctx context.Context, in EntityInput) (*model.EntityItem, error) {
	if in.DocumentID == nil || *in.DocumentID == 0 {
		return nil, invalid("documentId", "文档ID不能为空")
	}
	if in.TokenStart == nil || in.TokenEnd == nil {
		return nil, invalid("tokenStart", "实体起止位置不能为空")
	}
	item := &model.EntityItem{
		DocumentID: *in.DocumentID,
		LabelID:    in.LabelID,
		Text:       strings.TrimSpace(in.Text),
		TokenStart: *in.TokenStart,
		TokenEnd:   *in.TokenEnd,
	}

	release, err := s.deps.lockDocument(ctx, item.DocumentID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureLabel(ctx, tx, item.LabelID); err != nil {
			return err
		}
		if item.Text == "" {
			if err := fillTextFromTokens(ctx, tx, item); err != nil {
				return err
			}
		}
		return saveEntityInTx(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("实体创建成功, entityId=%d, documentId=%d, span=[%d,%d]", item.ID, item.DocumentID, item.TokenStart, item.TokenEnd)
	s.deps.refreshMentions(ctx, item.DocumentID)
	return item, nil
}

// Update 修改实体的标签、文本或区间。实体不能移动到其他文档。
func (s *entityItemService) Update(ctx context.Context, id uint, in EntityInput) (*model.EntityItem, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DocumentID != nil && *in.DocumentID != current.DocumentID {
		return nil, invalid("documentId", "不允许修改实体所属文档")
	}

	release, err := s.deps.lockDocument(ctx, current.DocumentID)
	if err != nil {
		return nil, err
	}
	defer release()

	var item *model.EntityItem
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.Entities().FindByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "entity %d", id)
		}
		item = found
		if in.LabelID != 0 {
			if err := ensureLabel(ctx, tx, in.LabelID); err != nil {
				return err
			}
			item.LabelID = in.LabelID
		}
		moved := false
		if in.TokenStart != nil && *in.TokenStart != item.TokenStart {
			item.TokenStart = *in.TokenStart
			moved = true
		}
		if in.TokenEnd != nil && *in.TokenEnd != item.TokenEnd {
			item.TokenEnd = *in.TokenEnd
			moved = true
		}
		if text := strings.TrimSpace(in.Text); text != "" {
			item.Text = text
		} else if moved {
			// 区间变化且未提供文本时，文本跟随新区间
			if err := fillTextFromTokens(ctx, tx, item); err != nil {
				return err
			}
		}
		return saveEntityInTx(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}
	s.deps.refreshMentions(ctx, item.DocumentID)
	return item, nil
}

// Delete 先清除指向该实体的 token 标记和引用它的关系，再删除实体。
func (s *entityItemService) Delete(ctx context.Context, id uint) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	release, err := s.deps.lockDocument(ctx, current.DocumentID)
	if err != nil {
		return err
	}
	defer release()

	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		item, err := tx.Entities().FindByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "entity %d", id)
		}
		tokens, err := tx.Tokens().FindByDocumentID(ctx, item.DocumentID)
		if err != nil {
			return err
		}
		others, err := tx.Entities().FindByDocumentID(ctx, item.DocumentID)
		if err != nil {
			return err
		}
		if err := saveTokens(ctx, tx, annotate.UnmarkEntity(tokens, item.ID, others)); err != nil {
			return err
		}
		if _, err := tx.Relations().DeleteByEntityIDs(ctx, []uint{item.ID}); err != nil {
			return fmt.Errorf("failed to delete relations of entity %d: %w", item.ID, err)
		}
		return tx.Entities().DeleteByID(ctx, item.ID)
	})
	if err != nil {
		return err
	}
	s.deps.refreshMentions(ctx, current.DocumentID)
	return nil
}

func ensureLabel(ctx context.Context, tx repository.Store, labelID uint) error {
	if labelID == 0 {
		return nil
	}
	if _, err := tx.Labels().FindByID(ctx, labelID); err != nil {
		if isRecordNotFound(err) {
			return invalid("labelId", fmt.Sprintf("标签 %d 不存在", labelID))
		}
		return err
	}
	return nil
}

// fillTextFromTokens 在未提供实体文本时，用区间内的 token 拼出文本。
func fillTextFromTokens(ctx context.Context, tx repository.Store, item *model.EntityItem) error {
	tokens, err := tx.Tokens().FindByDocumentID(ctx, item.DocumentID)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, t := range tokens {
		if item.Covers(t.TokenIndex) {
			sb.WriteString(t.TokenText)
		}
	}
	item.Text = sb.String()
	return nil
}
