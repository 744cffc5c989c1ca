package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-annotator-go/internal/model"
)

func (f *fixture) createRelLabel(t *testing.T, name string) *model.RelationLabel {
	t.Helper()
	label, err := f.relLabel.Create(f.ctx, name, "")
	require.NoError(t, err)
	return label
}

func relation(docID, labelID, head, tail uint) RelationInput {
	return RelationInput{DocumentID: &docID, RelationLabelID: labelID, HeadEntityID: head, TailEntityID: tail}
}

func TestRelationCreate(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城一网格超标")
	head := f.createEntity(t, doc.ID, 0, 1)
	tail := f.createEntity(t, doc.ID, 2, 4)
	label := f.createRelLabel(t, "包含")

	rel, err := f.rels.Create(f.ctx, relation(doc.ID, label.ID, head.ID, tail.ID))
	require.NoError(t, err)
	assert.NotZero(t, rel.ID)

	rels, err := f.rels.ListByDocument(f.ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, head.ID, rels[0].HeadEntityID)
	assert.Equal(t, tail.ID, rels[0].TailEntityID)

	_, err = f.rels.Create(f.ctx, relation(doc.ID, label.ID, head.ID, tail.ID))
	assert.ErrorIs(t, err, ErrConflict)

	// 反向关系不是重复
	_, err = f.rels.Create(f.ctx, relation(doc.ID, label.ID, tail.ID, head.ID))
	assert.NoError(t, err)
}

func TestRelationCreateValidation(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城一网格超标")
	other := f.createDoc(t, "西城")
	head := f.createEntity(t, doc.ID, 0, 1)
	tail := f.createEntity(t, doc.ID, 2, 4)
	foreign := f.createEntity(t, other.ID, 0, 1)
	label := f.createRelLabel(t, "包含")

	cases := []struct {
		name  string
		in    RelationInput
		field string
	}{
		{name: "missing document", in: RelationInput{RelationLabelID: label.ID, HeadEntityID: head.ID, TailEntityID: tail.ID}, field: "documentId"},
		{name: "missing label", in: relation(doc.ID, 0, head.ID, tail.ID), field: "relationLabelId"},
		{name: "unknown label", in: relation(doc.ID, 999, head.ID, tail.ID), field: "relationLabelId"},
		{name: "missing head", in: relation(doc.ID, label.ID, 0, tail.ID), field: "headEntityId"},
		{name: "same entity", in: relation(doc.ID, label.ID, head.ID, head.ID), field: "tailEntityId"},
		{name: "unknown tail", in: relation(doc.ID, label.ID, head.ID, 999), field: "tailEntityId"},
		{name: "foreign head", in: relation(doc.ID, label.ID, foreign.ID, tail.ID), field: "headEntityId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.rels.Create(f.ctx, tc.in)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	_, err := f.rels.Create(f.ctx, relation(999, label.ID, head.ID, tail.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationUpdate(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城一网格超标")
	other := f.createDoc(t, "西城")
	a := f.createEntity(t, doc.ID, 0, 1)
	b := f.createEntity(t, doc.ID, 2, 4)
	c := f.createEntity(t, doc.ID, 5, 6)
	contains := f.createRelLabel(t, "包含")
	near := f.createRelLabel(t, "相邻")

	rel, err := f.rels.Create(f.ctx, relation(doc.ID, contains.ID, a.ID, b.ID))
	require.NoError(t, err)

	updated, err := f.rels.Update(f.ctx, rel.ID, RelationInput{RelationLabelID: near.ID, TailEntityID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, near.ID, updated.RelationLabelID)
	assert.Equal(t, a.ID, updated.HeadEntityID)
	assert.Equal(t, c.ID, updated.TailEntityID)

	_, err = f.rels.Update(f.ctx, rel.ID, RelationInput{DocumentID: &other.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.rels.Update(f.ctx, rel.ID, RelationInput{HeadEntityID: c.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.rels.Update(f.ctx, 999, RelationInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.rels.Delete(f.ctx, rel.ID))
	_, err = f.rels.Get(f.ctx, rel.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.rels.Delete(f.ctx, rel.ID), ErrNotFound)
}

func TestEntityDeleteRemovesRelations(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城一网格超标")
	a := f.createEntity(t, doc.ID, 0, 1)
	b := f.createEntity(t, doc.ID, 2, 4)
	c := f.createEntity(t, doc.ID, 5, 6)
	label := f.createRelLabel(t, "包含")

	gone, err := f.rels.Create(f.ctx, relation(doc.ID, label.ID, a.ID, b.ID))
	require.NoError(t, err)
	kept, err := f.rels.Create(f.ctx, relation(doc.ID, label.ID, a.ID, c.ID))
	require.NoError(t, err)

	require.NoError(t, f.entities.Delete(f.ctx, b.ID))

	_, err = f.rels.Get(f.ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.rels.Get(f.ctx, kept.ID)
	assert.NoError(t, err)
}

func TestDocumentUpdateRemovesRelationsOfDeletedEntities(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城一网格超标")
	a := f.createEntity(t, doc.ID, 0, 1)
	gone := f.createEntity(t, doc.ID, 2, 4)
	c := f.createEntity(t, doc.ID, 5, 6)
	label := f.createRelLabel(t, "包含")

	dropped, err := f.rels.Create(f.ctx, relation(doc.ID, label.ID, gone.ID, c.ID))
	require.NoError(t, err)
	kept, err := f.rels.Create(f.ctx, relation(doc.ID, label.ID, a.ID, c.ID))
	require.NoError(t, err)

	_, err = f.docs.Update(f.ctx, doc.ID, "doc", "东城超标", -1)
	require.NoError(t, err)

	_, err = f.rels.Get(f.ctx, dropped.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	rels, err := f.rels.ListByDocument(f.ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, kept.ID, rels[0].ID)
}

func TestDocumentDeleteRemovesRelations(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城一网格超标")
	a := f.createEntity(t, doc.ID, 0, 1)
	b := f.createEntity(t, doc.ID, 2, 4)
	label := f.createRelLabel(t, "包含")
	rel, err := f.rels.Create(f.ctx, relation(doc.ID, label.ID, a.ID, b.ID))
	require.NoError(t, err)

	require.NoError(t, f.docs.Delete(f.ctx, doc.ID))

	_, err = f.rels.Get(f.ctx, rel.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.rels.ListByDocument(f.ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 标签不再被引用，可以删除
	assert.NoError(t, f.relLabel.Delete(f.ctx, label.ID))
}
