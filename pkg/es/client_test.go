package es

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-annotator-go/internal/model"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, handler func(r recorded) (int, string)) (*MentionIndex, *[]recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path, body: string(body)}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		status, resp := handler(rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &MentionIndex{client: client, index: "mentions"}, &calls
}

func TestReplaceDocument(t *testing.T) {
	idx, calls := newTestIndex(t, func(r recorded) (int, string) {
		if strings.HasSuffix(r.path, "/_bulk") {
			return http.StatusOK, `{"took":1,"errors":false,"items":[]}`
		}
		return http.StatusOK, `{"deleted":1}`
	})

	mentions := []model.EntityMention{
		{MentionID: "1_10", EntityID: 10, DocumentID: 1, Text: "一网格", LabelName: "状态判断"},
		{MentionID: "1_11", EntityID: 11, DocumentID: 1, Text: "超标完成"},
	}
	require.NoError(t, idx.ReplaceDocument(context.Background(), 1, mentions))

	require.Len(t, *calls, 2)
	del := (*calls)[0]
	assert.Equal(t, "/mentions/_delete_by_query", del.path)
	assert.Contains(t, del.body, `"document_id":1`)

	bulk := (*calls)[1]
	assert.Equal(t, "/_bulk", bulk.path)
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(bulk.body))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"_id":"1_10"`)
	var doc model.EntityMention
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doc))
	assert.Equal(t, "一网格", doc.Text)
}

func TestReplaceDocumentBulkErrors(t *testing.T) {
	idx, _ := newTestIndex(t, func(r recorded) (int, string) {
		if strings.HasSuffix(r.path, "/_bulk") {
			return http.StatusOK, `{"errors":true,"items":[]}`
		}
		return http.StatusOK, `{}`
	})
	err := idx.ReplaceDocument(context.Background(), 1, []model.EntityMention{{MentionID: "1_1"}})
	assert.Error(t, err)
}

func TestReplaceDocumentWithoutMentionsOnlyDeletes(t *testing.T) {
	idx, calls := newTestIndex(t, func(r recorded) (int, string) { return http.StatusOK, `{}` })
	require.NoError(t, idx.ReplaceDocument(context.Background(), 3, nil))
	assert.Len(t, *calls, 1)
}

func TestSearch(t *testing.T) {
	idx, calls := newTestIndex(t, func(r recorded) (int, string) {
		return http.StatusOK, `{"hits":{"total":{"value":1},"hits":[
			{"_score":2.5,"_source":{"mention_id":"1_10","entity_id":10,"document_id":1,"text":"一网格","label_name":"状态判断","token_start":3,"token_end":5}}
		]}}`
	})

	results, err := idx.Search(context.Background(), "一网格", 1, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2.5, results[0].Score)
	assert.Equal(t, uint(10), results[0].EntityID)
	assert.Equal(t, 3, results[0].TokenStart)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/mentions/_search", (*calls)[0].path)
	assert.Contains(t, (*calls)[0].body, `"document_id":1`)
	assert.Contains(t, (*calls)[0].body, `"size":5`)
}

func TestSearchError(t *testing.T) {
	idx, _ := newTestIndex(t, func(r recorded) (int, string) {
		return http.StatusBadRequest, `{"error":{"type":"parsing_exception"}}`
	})
	_, err := idx.Search(context.Background(), "x", 0, 5)
	assert.Error(t, err)
}
