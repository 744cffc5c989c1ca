package service

import (
	"context"

	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/log"
)

// DocumentTokenService 提供 token 查询与标记全量重同步。
type DocumentTokenService interface {
	ListByDocument(ctx context.Context, documentID uint) ([]model.DocumentToken, error)
	// Resync 清空文档所有 token 标记后按实体重新标记，返回被修改的 token 数。
	Resync(ctx context.Context, documentID uint) (int, error)
}

type documentTokenService struct {
	deps Dependencies
}

// NewDocumentTokenService 创建一个新的 DocumentTokenService 实例。
func NewDocumentTokenService(deps Dependencies) DocumentTokenService {
	return &documentTokenService{deps: deps}
}

func (s *documentTokenService) ListByDocument(ctx context.Context, documentID uint) ([]model.DocumentToken, error) {
	if _, err := findDocument(ctx, s.deps.Store, documentID); err != nil {
		return nil, err
	}
	return s.deps.Store.Tokens().FindByDocumentID(ctx, documentID)
}

func (s *documentTokenService) Resync(ctx context.Context, documentID uint) (int, error) {
	release, err := s.deps.lockDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	defer release()

	var changed int
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := findDocument(ctx, tx, documentID); err != nil {
			return err
		}
		changed, err = resyncMarks(ctx, tx, documentID)
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Infof("token 标记重同步完成, documentId=%d, 修改 %d 个 token", documentID, changed)
	return changed, nil
}
