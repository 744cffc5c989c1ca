package service

import (
	"context"
	"fmt"

	"doc-annotator-go/internal/annotate"
	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/log"
)

// DocumentService 接口定义了文档管理相关的业务操作。
type DocumentService interface {
	Get(ctx context.Context, id uint) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	Create(ctx context.Context, title, content string) (*model.Document, error)
	// Update 修改标题与正文，expectedVersion 为调用方读到的版本，负数表示不校验。
	Update(ctx context.Context, id uint, title, content string, expectedVersion int64) (*model.Document, error)
	Delete(ctx context.Context, id uint) error
}

type documentService struct {
	deps Dependencies
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(deps Dependencies) DocumentService {
	return &documentService{deps: deps}
}

func (s *documentService) Get(ctx context.Context, id uint) (*model.Document, error) {
	return findDocument(ctx, s.deps.Store, id)
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	return s.deps.Store.Documents().FindAll(ctx)
}

// Create 插入文档并生成字符级 token。
func (s *documentService) Create(ctx context.Context, title, content string) (*model.Document, error) {
	doc := &model.Document{Title: title, Content: content}
	err := s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Documents().Create(ctx, doc); err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		count, err := buildTokens(ctx, tx, doc.ID, content)
		if err != nil {
			return err
		}
		log.Infof("文档创建成功, documentId=%d, tokens=%d", doc.ID, count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update 修改文档内容：对齐新旧 token 序列，迁移或删除实体，重建 token 表并全量同步标记。
func (s *documentService) Update(ctx context.Context, id uint, title, content string, expectedVersion int64) (*model.Document, error) {
	release, err := s.deps.lockDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	var previous, updated *model.Document
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		doc, err := findDocument(ctx, tx, id)
		if err != nil {
			return err
		}
		if expectedVersion >= 0 && doc.Version != expectedVersion {
			return fmt.Errorf("document %d is at version %d, not %d: %w", id, doc.Version, expectedVersion, ErrConflict)
		}
		previous = doc

		oldTokens, err := tx.Tokens().FindByDocumentID(ctx, id)
		if err != nil {
			return err
		}
		entities, err := tx.Entities().FindByDocumentID(ctx, id)
		if err != nil {
			return err
		}
		result := annotate.Realign(model.TokenTexts(oldTokens), annotate.Tokenize(content), entities)
		if err := applyRealignment(ctx, tx, entities, result); err != nil {
			return err
		}

		next := *doc
		next.Title = title
		next.Content = content
		ok, err := tx.Documents().Update(ctx, &next, expectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update document %d: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("document %d was modified concurrently: %w", id, ErrConflict)
		}

		if err := tx.Tokens().DeleteByDocumentID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete tokens of document %d: %w", id, err)
		}
		if _, err := buildTokens(ctx, tx, id, content); err != nil {
			return err
		}
		if _, err := resyncMarks(ctx, tx, id); err != nil {
			return err
		}

		log.Infow("文档内容已更新",
			"documentId", id,
			"entitiesKept", len(result.Updated),
			"entitiesDeleted", len(result.Deleted))
		updated, err = tx.Documents().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if previous.Content != updated.Content {
		s.deps.archive(ctx, *previous)
	}
	s.deps.refreshMentions(ctx, id)
	return updated, nil
}

func applyRealignment(ctx context.Context, tx repository.Store, before []model.EntityItem, result annotate.RealignResult) error {
	deleted := make([]uint, 0, len(result.Deleted))
	for _, e := range result.Deleted {
		if err := tx.Entities().DeleteByID(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to delete entity %d: %w", e.ID, err)
		}
		deleted = append(deleted, e.ID)
		log.Infof("实体 %d 的内容已被全部删除, 实体随之删除", e.ID)
	}
	if n, err := tx.Relations().DeleteByEntityIDs(ctx, deleted); err != nil {
		return fmt.Errorf("failed to delete relations of removed entities: %w", err)
	} else if n > 0 {
		log.Infof("随实体删除了 %d 条关系", n)
	}

	spans := make(map[uint]annotate.Span, len(before))
	for _, e := range before {
		spans[e.ID] = annotate.Span{Start: e.TokenStart, End: e.TokenEnd}
	}
	for i := range result.Updated {
		e := &result.Updated[i]
		if spans[e.ID] == (annotate.Span{Start: e.TokenStart, End: e.TokenEnd}) {
			continue
		}
		if err := tx.Entities().Update(ctx, e); err != nil {
			return fmt.Errorf("failed to move entity %d: %w", e.ID, err)
		}
	}
	return nil
}

// Delete 依次删除文档的 token、关系、实体和文档本身。
func (s *documentService) Delete(ctx context.Context, id uint) error {
	release, err := s.deps.lockDocument(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	var deleted *model.Document
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		doc, err := findDocument(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Tokens().DeleteByDocumentID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete tokens of document %d: %w", id, err)
		}
		if err := tx.Relations().DeleteByDocumentID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete relations of document %d: %w", id, err)
		}
		if err := tx.Entities().DeleteByDocumentID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete entities of document %d: %w", id, err)
		}
		if err := tx.Documents().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete document %d: %w", id, err)
		}
		deleted = doc
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.archive(ctx, *deleted)
	s.deps.dropMentions(ctx, id)
	return nil
}
