package service

import (
	"context"
	"errors"
	"strings"

	"doc-annotator-go/internal/annotate"
	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/pkg/llm"
	"doc-annotator-go/pkg/log"
)

// 跳过候选实体的原因
const (
	SkipEmptyText    = "empty_text"
	SkipLabel        = "label_error"
	SkipNotLocated   = "not_located"
	SkipInvalidRange = "invalid_range"
	SkipDuplicate    = "duplicate"
	SkipNotFound     = "not_found"
	SkipStoreError   = "store_error"
)

// SkippedCandidate 记录一个未能落库的候选实体及原因。
type SkippedCandidate struct {
	Candidate llm.Candidate `json:"candidate"`
	Reason    string        `json:"reason"`
	Detail    string        `json:"detail,omitempty"`
}

// ExtractionResult 汇总一次自动抽取的结果。
type ExtractionResult struct {
	DocumentID uint               `json:"documentId"`
	Candidates []llm.Candidate    `json:"candidates"`
	Created    []model.EntityItem `json:"created"`
	Skipped    []SkippedCandidate `json:"skipped"`
}

// ExtractionService 调用大模型从文档中抽取实体并保存。
type ExtractionService interface {
	AutoExtract(ctx context.Context, documentID uint) (*ExtractionResult, error)
}

type extractionService struct {
	deps      Dependencies
	labels    EntityLabelService
	prompts   PromptTemplateService
	extractor llm.Extractor
}

// NewExtractionService 创建一个新的 ExtractionService 实例。
// prompts 中启用的 entity_extraction 模板优先于配置中的提示词和模型，prompts 可以为 nil。
func NewExtractionService(deps Dependencies, labels EntityLabelService, prompts PromptTemplateService, extractor llm.Extractor) ExtractionService {
	return &extractionService{deps: deps, labels: labels, prompts: prompts, extractor: extractor}
}

// AutoExtract 对文档执行一次自动抽取。
// 模型输出无法解析时返回空结果；单个候选失败只会被跳过，不影响其他候选。
func (s *extractionService) AutoExtract(ctx context.Context, documentID uint) (*ExtractionResult, error) {
	doc, err := findDocument(ctx, s.deps.Store, documentID)
	if err != nil {
		return nil, err
	}
	result := &ExtractionResult{DocumentID: documentID}
	if strings.TrimSpace(doc.Content) == "" {
		return result, nil
	}

	req, err := s.buildRequest(ctx, doc.Content)
	if err != nil {
		return nil, err
	}
	candidates, err := s.extractor.Extract(ctx, req)
	if errors.Is(err, llm.ErrUnparseable) {
		log.Warnw("模型返回内容无法解析, 本次不抽取实体", "documentId", documentID, "error", err)
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Candidates = candidates
	log.Infof("[AutoExtract] documentId=%d, 模型返回 %d 个候选实体", documentID, len(candidates))

	release, err := s.deps.lockDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 模型调用期间文档可能已被删除
	if _, err := findDocument(ctx, s.deps.Store, documentID); err != nil {
		return nil, err
	}
	tokens, err := s.deps.Store.Tokens().FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	texts := model.TokenTexts(tokens)

	for _, c := range candidates {
		item, skip := s.saveCandidate(ctx, documentID, texts, c)
		if skip != nil {
			log.Infow("跳过候选实体", "documentId", documentID, "text", c.Text, "reason", skip.Reason, "detail", skip.Detail)
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		result.Created = append(result.Created, *item)
	}

	if len(result.Created) > 0 {
		s.deps.refreshMentions(ctx, documentID)
	}
	log.Infof("[AutoExtract] documentId=%d, 新建 %d 个实体, 跳过 %d 个", documentID, len(result.Created), len(result.Skipped))
	return result, nil
}

// buildRequest 使用启用的抽取模板构造请求，没有启用的模板时沿用配置。
func (s *extractionService) buildRequest(ctx context.Context, content string) (llm.Request, error) {
	req := llm.Request{Content: content}
	if s.prompts == nil {
		return req, nil
	}
	tmpl, err := s.prompts.Active(ctx, model.TaskEntityExtraction)
	if errors.Is(err, ErrNotFound) {
		return req, nil
	}
	if err != nil {
		return req, err
	}
	log.Debugf("[AutoExtract] 使用提示词模板 %s(v%d)", tmpl.Name, tmpl.Version)
	req.Prompt = tmpl.TemplateText
	req.Model = tmpl.Model
	return req, nil
}

func (s *extractionService) saveCandidate(ctx context.Context, documentID uint, tokens []string, c llm.Candidate) (*model.EntityItem, *SkippedCandidate) {
	skip := func(reason string, err error) *SkippedCandidate {
		sc := &SkippedCandidate{Candidate: c, Reason: reason}
		if err != nil {
			sc.Detail = err.Error()
		}
		return sc
	}

	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil, skip(SkipEmptyText, nil)
	}
	label, err := s.labels.FindOrCreate(ctx, c.Label, c.Description)
	if err != nil {
		return nil, skip(SkipLabel, err)
	}
	span, ok := annotate.Locate(tokens, text)
	if !ok {
		return nil, skip(SkipNotLocated, nil)
	}

	item := &model.EntityItem{
		DocumentID: documentID,
		LabelID:    label.ID,
		Text:       text,
		TokenStart: span.Start,
		TokenEnd:   span.End,
	}
	err = s.deps.Store.Transaction(ctx, func(tx repository.Store) error {
		return saveEntityInTx(ctx, tx, item)
	})
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, ErrConflict):
		return nil, skip(SkipDuplicate, err)
	case errors.Is(err, ErrValidation):
		return nil, skip(SkipInvalidRange, err)
	case errors.Is(err, ErrNotFound):
		return nil, skip(SkipNotFound, err)
	default:
		return nil, skip(SkipStoreError, err)
	}
}
