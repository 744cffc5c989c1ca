// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"doc-annotator-go/internal/config"
	"doc-annotator-go/internal/model"
	"doc-annotator-go/pkg/log"
)

// 使用 ik 中文分词器，实体文本与标签名均可全文检索
const mentionMapping = `{
	"mappings": {
		"properties": {
			"mention_id": { "type": "keyword" },
			"entity_id": { "type": "long" },
			"document_id": { "type": "long" },
			"document_title": { "type": "text", "analyzer": "ik_max_word", "search_analyzer": "ik_smart" },
			"text": {
				"type": "text",
				"analyzer": "ik_max_word",
				"search_analyzer": "ik_smart",
				"fields": { "keyword": { "type": "keyword" } }
			},
			"label_id": { "type": "long" },
			"label_name": { "type": "keyword" },
			"token_start": { "type": "integer" },
			"token_end": { "type": "integer" }
		}
	}
}`

// MentionIndex 维护 Elasticsearch 中的实体提及索引。
type MentionIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewMentionIndex 初始化 Elasticsearch 客户端，并确保索引存在。
func NewMentionIndex(esCfg config.ElasticsearchConfig) (*MentionIndex, error) {
	var addresses []string
	for _, a := range strings.Split(esCfg.Addresses, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addresses = append(addresses, a)
		}
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, err
	}
	idx := &MentionIndex{client: client, index: esCfg.IndexName}
	if err := idx.createIndexIfNotExists(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func (m *MentionIndex) createIndexIfNotExists(ctx context.Context) error {
	res, err := m.client.Indices.Exists([]string{m.index}, m.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("检查索引是否存在时出错: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", m.index)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", m.index, res.StatusCode)
	}

	res, err = m.client.Indices.Create(
		m.index,
		m.client.Indices.Create.WithBody(strings.NewReader(mentionMapping)),
		m.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("创建索引 '%s' 失败: %w", m.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", m.index, res.String())
	}
	log.Infof("索引 '%s' 创建成功", m.index)
	return nil
}

// ReplaceDocument 删除文档已有的提及并批量写入新的提及。
func (m *MentionIndex) ReplaceDocument(ctx context.Context, documentID uint, mentions []model.EntityMention) error {
	if err := m.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if len(mentions) == 0 {
		return nil
	}

	var body bytes.Buffer
	for _, mention := range mentions {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": m.index, "_id": mention.MentionID}}
		if err := writeNDJSON(&body, meta, mention); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &body, Refresh: "true"}.Do(ctx, m.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("批量索引实体提及失败: %s", res.String())
	}

	var bulk struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("解析 bulk 响应失败: %w", err)
	}
	if bulk.Errors {
		return errors.New("部分实体提及索引失败")
	}
	return nil
}

// DeleteDocument 删除文档的全部提及。
func (m *MentionIndex) DeleteDocument(ctx context.Context, documentID uint) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"document_id": documentID},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return err
	}
	refresh := true
	res, err := esapi.DeleteByQueryRequest{
		Index:   []string{m.index},
		Body:    bytes.NewReader(body),
		Refresh: &refresh,
	}.Do(ctx, m.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("删除文档 %d 的实体提及失败: %s", documentID, res.String())
	}
	return nil
}

// Search 在实体文本和标签名上检索，documentID 非 0 时只在该文档内检索。
func (m *MentionIndex) Search(ctx context.Context, query string, documentID uint, size int) ([]model.MentionSearchResult, error) {
	boolQuery := map[string]interface{}{
		"must": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"text^3", "label_name^2", "document_title"},
			},
		},
		"should": []map[string]interface{}{
			{"match_phrase": map[string]interface{}{"text": map[string]interface{}{"query": query, "boost": 3.0}}},
		},
	}
	if documentID != 0 {
		boolQuery["filter"] = []map[string]interface{}{
			{"term": map[string]interface{}{"document_id": documentID}},
		}
	}
	body, err := json.Marshal(map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
	})
	if err != nil {
		return nil, err
	}

	res, err := m.client.Search(
		m.client.Search.WithContext(ctx),
		m.client.Search.WithIndex(m.index),
		m.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("检索实体提及失败: %s", res.String())
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]model.MentionSearchResult, error) {
	var payload struct {
		Hits struct {
			Hits []struct {
				Score  float64             `json:"_score"`
				Source model.EntityMention `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析检索结果失败: %w", err)
	}
	results := make([]model.MentionSearchResult, 0, len(payload.Hits.Hits))
	for _, h := range payload.Hits.Hits {
		results = append(results, model.MentionSearchResult{EntityMention: h.Source, Score: h.Score})
	}
	return results, nil
}

func writeNDJSON(buf *bytes.Buffer, lines ...interface{}) error {
	for _, l := range lines {
		b, err := json.Marshal(l)
		if err != nil {
			return err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return nil
}
