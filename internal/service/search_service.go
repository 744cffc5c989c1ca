package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"doc-annotator-go/internal/model"
	"doc-annotator-go/pkg/log"
)

// ErrSearchUnavailable 表示未配置提及索引。
var ErrSearchUnavailable = errors.New("mention search is not configured")

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// SearchService 接口定义了实体提及的检索操作。
type SearchService interface {
	// SearchMentions 检索实体提及，documentID 为 0 时不按文档过滤。
	SearchMentions(ctx context.Context, query string, documentID uint, size int) ([]model.MentionSearchResult, error)
}

type searchService struct {
	index MentionIndex
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(index MentionIndex) SearchService {
	return &searchService{index: index}
}

func (s *searchService) SearchMentions(ctx context.Context, query string, documentID uint, size int) ([]model.MentionSearchResult, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil, invalid("q", "查询内容不能为空")
	}
	if s.index == nil {
		return nil, ErrSearchUnavailable
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	size = min(size, maxSearchSize)

	log.Infof("[SearchService] 检索实体提及, query='%s', normalized='%s', documentId=%d", query, normalized, documentID)
	return s.index.Search(ctx, normalized, documentID, size)
}

var (
	reKeep  = regexp.MustCompile(`[^\p{Han}\p{L}\p{N}\s]+`)
	reSpace = regexp.MustCompile(`\s+`)
)

// normalizeQuery 去掉标点并归一空白。
func normalizeQuery(q string) string {
	kept := reKeep.ReplaceAllString(strings.ToLower(q), " ")
	return strings.TrimSpace(reSpace.ReplaceAllString(kept, " "))
}
