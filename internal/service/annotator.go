// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"

	"doc-annotator-go/internal/annotate"
	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/lock"
	"doc-annotator-go/pkg/log"
)

// MentionIndex 维护实体提及的全文检索索引。
type MentionIndex interface {
	ReplaceDocument(ctx context.Context, documentID uint, mentions []model.EntityMention) error
	DeleteDocument(ctx context.Context, documentID uint) error
	Search(ctx context.Context, query string, documentID uint, size int) ([]model.MentionSearchResult, error)
}

// ContentArchiver 在文档内容被覆盖或删除前保存旧版本。
type ContentArchiver interface {
	Archive(ctx context.Context, doc model.Document) error
}

// Dependencies 汇总各业务服务共享的协作者。Index 与 Archiver 可以为 nil。
type Dependencies struct {
	Store    repository.Store
	Locker   lock.Locker
	Index    MentionIndex
	Archiver ContentArchiver
}

// lockDocument 获取文档级锁，锁被占用时返回 ErrConflict。
func (d Dependencies) lockDocument(ctx context.Context, documentID uint) (func(), error) {
	release, err := d.Locker.Acquire(ctx, lock.DocumentKey(documentID))
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, fmt.Errorf("document %d is being modified: %w", documentID, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

// refreshMentions 在事务提交后重建文档的提及索引，失败只记录日志。
func (d Dependencies) refreshMentions(ctx context.Context, documentID uint) {
	if d.Index == nil {
		return
	}
	mentions, err := buildMentions(ctx, d.Store, documentID)
	if err == nil {
		err = d.Index.ReplaceDocument(ctx, documentID, mentions)
	}
	if err != nil {
		log.Warnw("刷新实体提及索引失败", "documentId", documentID, "error", err)
	}
}

func (d Dependencies) dropMentions(ctx context.Context, documentID uint) {
	if d.Index == nil {
		return
	}
	if err := d.Index.DeleteDocument(ctx, documentID); err != nil {
		log.Warnw("删除实体提及索引失败", "documentId", documentID, "error", err)
	}
}

func (d Dependencies) archive(ctx context.Context, doc model.Document) {
	if d.Archiver == nil || doc.Content == "" {
		return
	}
	if err := d.Archiver.Archive(ctx, doc); err != nil {
		log.Warnw("归档文档旧内容失败", "documentId", doc.ID, "version", doc.Version, "error", err)
	}
}

func buildMentions(ctx context.Context, store repository.Store, documentID uint) ([]model.EntityMention, error) {
	doc, err := store.Documents().FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	entities, err := store.Entities().FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	labelNames := make(map[uint]string)
	mentions := make([]model.EntityMention, 0, len(entities))
	for _, e := range entities {
		name, ok := labelNames[e.LabelID]
		if !ok && e.LabelID != 0 {
			if label, err := store.Labels().FindByID(ctx, e.LabelID); err == nil {
				name = label.LabelName
			}
			labelNames[e.LabelID] = name
		}
		mentions = append(mentions, model.EntityMention{
			MentionID:     fmt.Sprintf("%d_%d", documentID, e.ID),
			EntityID:      e.ID,
			DocumentID:    documentID,
			DocumentTitle: doc.Title,
			Text:          e.Text,
			LabelID:       e.LabelID,
			LabelName:     name,
			TokenStart:    e.TokenStart,
			TokenEnd:      e.TokenEnd,
		})
	}
	return mentions, nil
}

// findDocument 读取文档，不存在时返回 ErrNotFound。
func findDocument(ctx context.Context, store repository.Store, id uint) (*model.Document, error) {
	doc, err := store.Documents().FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "document %d", id)
	}
	return doc, nil
}

// buildTokens 将文本切分并批量写入 token 表。
func buildTokens(ctx context.Context, tx repository.Store, documentID uint, content string) (int, error) {
	texts := annotate.Tokenize(content)
	tokens := make([]model.DocumentToken, len(texts))
	for i, text := range texts {
		tokens[i] = model.DocumentToken{DocumentID: documentID, TokenIndex: i, TokenText: text}
	}
	if err := tx.Tokens().BatchCreate(ctx, tokens); err != nil {
		return 0, fmt.Errorf("failed to create tokens for document %d: %w", documentID, err)
	}
	return len(tokens), nil
}

// resyncMarks 按全部实体重新计算文档的 token 标记，返回被修改的 token 数。
func resyncMarks(ctx context.Context, tx repository.Store, documentID uint) (int, error) {
	tokens, err := tx.Tokens().FindByDocumentID(ctx, documentID)
	if err != nil {
		return 0, err
	}
	entities, err := tx.Entities().FindByDocumentID(ctx, documentID)
	if err != nil {
		return 0, err
	}
	changed := annotate.ApplyPlan(tokens, annotate.PlanMarks(len(tokens), entities))
	if err := saveTokens(ctx, tx, changed); err != nil {
		return 0, err
	}
	return len(changed), nil
}

func saveTokens(ctx context.Context, tx repository.Store, tokens []model.DocumentToken) error {
	for i := range tokens {
		if err := tx.Tokens().Update(ctx, &tokens[i]); err != nil {
			return fmt.Errorf("failed to update token %d: %w", tokens[i].TokenIndex, err)
		}
	}
	return nil
}

// ValidateEntityRange 校验实体区间：文档必须存在，起止下标非空、非负、有序且不越过 token 数。
func ValidateEntityRange(documentID uint, start, end *int, tokenCount int) error {
	if documentID == 0 {
		return invalid("documentId", "文档ID不能为空")
	}
	if start == nil || end == nil {
		return invalid("tokenStart", "实体起止位置不能为空")
	}
	if *start < 0 || *end < 0 {
		return invalid("tokenStart", "实体起止位置不能为负数")
	}
	if *start > *end {
		return invalid("tokenEnd", "实体结束位置不能小于起始位置")
	}
	if *end >= tokenCount {
		return invalid("tokenEnd", fmt.Sprintf("实体结束位置 %d 超出文档长度 %d", *end, tokenCount))
	}
	return nil
}

// checkDuplicateSpan 拒绝同一文档中区间完全相同的另一个实体，selfID 为正在更新的实体。
func checkDuplicateSpan(ctx context.Context, tx repository.Store, item *model.EntityItem, selfID uint) error {
	same, err := tx.Entities().FindByDocumentIDAndTokenRange(ctx, item.DocumentID, item.TokenStart, item.TokenEnd)
	if err != nil {
		return err
	}
	for _, e := range same {
		if e.ID != selfID {
			return fmt.Errorf("entity %d already spans [%d,%d] in document %d: %w",
				e.ID, item.TokenStart, item.TokenEnd, item.DocumentID, ErrConflict)
		}
	}
	return nil
}

// saveEntityInTx 在事务内校验、写入实体并增量更新 token 标记。
// item.ID 为 0 时新建，否则更新。校验失败时不会写入任何数据。
func saveEntityInTx(ctx context.Context, tx repository.Store, item *model.EntityItem) error {
	if _, err := findDocument(ctx, tx, item.DocumentID); err != nil {
		return err
	}
	tokens, err := tx.Tokens().FindByDocumentID(ctx, item.DocumentID)
	if err != nil {
		return err
	}
	if err := ValidateEntityRange(item.DocumentID, &item.TokenStart, &item.TokenEnd, len(tokens)); err != nil {
		return err
	}
	if err := checkDuplicateSpan(ctx, tx, item, item.ID); err != nil {
		return err
	}

	if item.ID == 0 {
		err = tx.Entities().Create(ctx, item)
	} else {
		err = tx.Entities().Update(ctx, item)
	}
	if err != nil {
		return mapStoreError(err, "save entity")
	}

	others, err := tx.Entities().FindByDocumentID(ctx, item.DocumentID)
	if err != nil {
		return err
	}
	return saveTokens(ctx, tx, annotate.MarkEntity(tokens, *item, others))
}
