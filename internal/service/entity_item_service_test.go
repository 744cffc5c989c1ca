package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestValidateEntityRange(t *testing.T) {
	cases := []struct {
		name  string
		docID uint
		start *int
		end   *int
		field string
	}{
		{name: "missing document", docID: 0, start: intPtr(0), end: intPtr(0), field: "documentId"},
		{name: "missing start", docID: 1, start: nil, end: intPtr(0), field: "tokenStart"},
		{name: "missing end", docID: 1, start: intPtr(0), end: nil, field: "tokenStart"},
		{name: "negative", docID: 1, start: intPtr(-1), end: intPtr(0), field: "tokenStart"},
		{name: "reversed", docID: 1, start: intPtr(3), end: intPtr(2), field: "tokenEnd"},
		{name: "past end", docID: 1, start: intPtr(0), end: intPtr(5), field: "tokenEnd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEntityRange(tc.docID, tc.start, tc.end, 5)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.NoError(t, ValidateEntityRange(1, intPtr(0), intPtr(4), 5))
	assert.NoError(t, ValidateEntityRange(1, intPtr(2), intPtr(2), 5))
}

func TestEntityCreateMarksTokens(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "东城-一网格超标完成")

	e := f.createEntity(t, doc.ID, 3, 5)
	assert.Equal(t, "一网格", e.Text, "text defaults to the covered tokens")
	assert.Equal(t, []uint{0, 0, 0, e.ID, e.ID, e.ID, 0, 0, 0, 0}, f.tokenOwners(t, doc.ID))
	f.assertMarksConsistent(t, doc.ID)

	require.Len(t, f.index.docs[doc.ID], 1)
	assert.Equal(t, "一网格", f.index.docs[doc.ID][0].Text)
}

func TestEntityCreateRejectsDuplicateSpan(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abcdef")
	first := f.createEntity(t, doc.ID, 1, 3)
	before := f.tokenOwners(t, doc.ID)

	_, err := f.entities.Create(f.ctx, span(doc.ID, 1, 3))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, before, f.tokenOwners(t, doc.ID))

	items, err := f.entities.ListByDocument(f.ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)
}

func TestEntityCreateValidation(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abc")

	_, err := f.entities.Create(f.ctx, span(doc.ID, 1, 3))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.entities.Create(f.ctx, span(doc.ID, 2, 1))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.entities.Create(f.ctx, EntityInput{TokenStart: intPtr(0), TokenEnd: intPtr(0)})
	assert.ErrorIs(t, err, ErrValidation)

	docID := doc.ID
	_, err = f.entities.Create(f.ctx, EntityInput{DocumentID: &docID, TokenEnd: intPtr(0)})
	assert.ErrorIs(t, err, ErrValidation)

	in := span(doc.ID, 0, 0)
	in.LabelID = 77
	_, err = f.entities.Create(f.ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, []uint{0, 0, 0}, f.tokenOwners(t, doc.ID))
}

func TestEntityCreateMissingDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.entities.Create(f.ctx, span(999, 0, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestEntityUpdateRefreshesTextWithSpan(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abcdef")
	e := f.createEntity(t, doc.ID, 0, 1)
	require.Equal(t, "ab", e.Text)

	updated, err := f.entities.Update(f.ctx, e.ID, EntityInput{TokenStart: intPtr(3), TokenEnd: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "def", updated.Text)

	// 只改标签时保留已有文本
	label, err := f.labels.Create(f.ctx, "组织", "")
	require.NoError(t, err)
	updated, err = f.entities.Update(f.ctx, e.ID, EntityInput{LabelID: label.ID})
	require.NoError(t, err)
	assert.Equal(t, "def", updated.Text)

	stored, err := f.entities.Get(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "def", stored.Text)
}

func TestEntityUpdateOlderOverlapKeepsHigherOwner(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abcdef")
	a := f.createEntity(t, doc.ID, 0, 3)
	b := f.createEntity(t, doc.ID, 2, 5)

	_, err := f.entities.Update(f.ctx, a.ID, EntityInput{TokenEnd: intPtr(4)})
	require.NoError(t, err)
	before := f.tokenOwners(t, doc.ID)
	assert.Equal(t, []uint{a.ID, a.ID, b.ID, b.ID, b.ID, b.ID}, before)

	changed, err := f.tokens.Resync(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, changed, "resync after incremental marking is a no-op")
	assert.Equal(t, before, f.tokenOwners(t, doc.ID))
}

func TestEntityOverlapLastWins(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abcdef")
	a := f.createEntity(t, doc.ID, 0, 3)
	b := f.createEntity(t, doc.ID, 2, 5)
	assert.Equal(t, []uint{a.ID, a.ID, b.ID, b.ID, b.ID, b.ID}, f.tokenOwners(t, doc.ID))

	require.NoError(t, f.entities.Delete(f.ctx, b.ID))
	assert.Equal(t, []uint{a.ID, a.ID, a.ID, a.ID, 0, 0}, f.tokenOwners(t, doc.ID))
	f.assertMarksConsistent(t, doc.ID)
}

func TestEntityUpdateMovesMarks(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abcdef")
	e := f.createEntity(t, doc.ID, 0, 1)
	other := f.createEntity(t, doc.ID, 4, 5)

	updated, err := f.entities.Update(f.ctx, e.ID, EntityInput{TokenStart: intPtr(2), TokenEnd: intPtr(3), Text: "cd"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TokenStart)
	assert.Equal(t, "cd", updated.Text)
	assert.Equal(t, []uint{0, 0, e.ID, e.ID, other.ID, other.ID}, f.tokenOwners(t, doc.ID))
	f.assertMarksConsistent(t, doc.ID)

	// 与其他实体区间完全相同的修改被拒绝
	_, err = f.entities.Update(f.ctx, e.ID, EntityInput{TokenStart: intPtr(4), TokenEnd: intPtr(5)})
	assert.ErrorIs(t, err, ErrConflict)

	// 区间不变的更新不算与自身重复
	_, err = f.entities.Update(f.ctx, e.ID, EntityInput{Text: "CD"})
	assert.NoError(t, err)

	moved := doc.ID + 1
	_, err = f.entities.Update(f.ctx, e.ID, EntityInput{DocumentID: &moved})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.entities.Update(f.ctx, 999, EntityInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityDelete(t *testing.T) {
	f := newFixture(t)
	doc := f.createDoc(t, "abc")
	e := f.createEntity(t, doc.ID, 0, 2)

	require.NoError(t, f.entities.Delete(f.ctx, e.ID))
	assert.Equal(t, []uint{0, 0, 0}, f.tokenOwners(t, doc.ID))
	f.assertMarksConsistent(t, doc.ID)
	assert.Empty(t, f.index.docs[doc.ID])

	assert.ErrorIs(t, f.entities.Delete(f.ctx, e.ID), ErrNotFound)
}

func TestEntityListMissingDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.entities.ListByDocument(f.ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
