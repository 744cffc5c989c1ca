package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-annotator-go/internal/model"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/internal/tester"
	"doc-annotator-go/pkg/lock"
)

type fakeIndex struct {
	mu       sync.Mutex
	docs     map[uint][]model.EntityMention
	lastQ    string
	lastSize int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[uint][]model.EntityMention)}
}

func (f *fakeIndex) ReplaceDocument(_ context.Context, documentID uint, mentions []model.EntityMention) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[documentID] = mentions
	return nil
}

func (f *fakeIndex) DeleteDocument(_ context.Context, documentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, documentID)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query string, documentID uint, size int) ([]model.MentionSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ, f.lastSize = query, size
	var out []model.MentionSearchResult
	for id, mentions := range f.docs {
		if documentID != 0 && id != documentID {
			continue
		}
		for _, m := range mentions {
			out = append(out, model.MentionSearchResult{EntityMention: m, Score: 1})
		}
	}
	return out, nil
}

type fakeArchiver struct {
	archived []model.Document
}

func (f *fakeArchiver) Archive(_ context.Context, doc model.Document) error {
	f.archived = append(f.archived, doc)
	return nil
}

type fixture struct {
	ctx      context.Context
	store    repository.Store
	locker   *lock.LocalLocker
	index    *fakeIndex
	archiver *fakeArchiver
	deps     Dependencies
	docs     DocumentService
	entities EntityItemService
	tokens   DocumentTokenService
	labels   EntityLabelService
	rels     RelationService
	relLabel RelationLabelService
	prompts  PromptTemplateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    repository.NewGormStore(tester.NewDB(t)),
		locker:   lock.NewLocalLocker(),
		index:    newFakeIndex(),
		archiver: &fakeArchiver{},
	}
	f.deps = Dependencies{Store: f.store, Locker: f.locker, Index: f.index, Archiver: f.archiver}
	f.docs = NewDocumentService(f.deps)
	f.entities = NewEntityItemService(f.deps)
	f.tokens = NewDocumentTokenService(f.deps)
	f.labels = NewEntityLabelService(f.deps)
	f.rels = NewRelationService(f.deps)
	f.relLabel = NewRelationLabelService(f.deps)
	f.prompts = NewPromptTemplateService(f.deps)
	return f
}

func (f *fixture) createDoc(t *testing.T, content string) *model.Document {
	t.Helper()
	doc, err := f.docs.Create(f.ctx, "doc", content)
	require.NoError(t, err)
	return doc
}

func (f *fixture) createEntity(t *testing.T, docID uint, start, end int) *model.EntityItem {
	t.Helper()
	item, err := f.entities.Create(f.ctx, span(docID, start, end))
	require.NoError(t, err)
	return item
}

func span(docID uint, start, end int) EntityInput {
	return EntityInput{DocumentID: &docID, TokenStart: &start, TokenEnd: &end}
}

func (f *fixture) tokenOwners(t *testing.T, docID uint) []uint {
	t.Helper()
	tokens, err := f.store.Tokens().FindByDocumentID(f.ctx, docID)
	require.NoError(t, err)
	owners := make([]uint, len(tokens))
	for i, tok := range tokens {
		if tok.EntityID != nil {
			owners[i] = *tok.EntityID
		}
	}
	return owners
}

// assertMarksConsistent 校验 token 被标记当且仅当存在覆盖它的实体，且标记指向其中之一。
func (f *fixture) assertMarksConsistent(t *testing.T, docID uint) {
	t.Helper()
	tokens, err := f.store.Tokens().FindByDocumentID(f.ctx, docID)
	require.NoError(t, err)
	entities, err := f.store.Entities().FindByDocumentID(f.ctx, docID)
	require.NoError(t, err)

	for i, tok := range tokens {
		require.Equal(t, i, tok.TokenIndex)
		covering := map[uint]bool{}
		for _, e := range entities {
			if e.Covers(tok.TokenIndex) {
				covering[e.ID] = true
			}
		}
		assert.Equal(t, len(covering) > 0, tok.IsEntity, "token %d", i)
		if len(covering) == 0 {
			assert.Nil(t, tok.EntityID, "token %d", i)
			continue
		}
		if assert.NotNil(t, tok.EntityID, "token %d", i) {
			assert.True(t, covering[*tok.EntityID], "token %d owned by non-covering entity %d", i, *tok.EntityID)
		}
	}
}
