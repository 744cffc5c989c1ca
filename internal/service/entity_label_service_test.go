package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelFindOrCreate(t *testing.T) {
	f := newFixture(t)

	first, err := f.labels.FindOrCreate(f.ctx, "状态判断", "定性评价")
	require.NoError(t, err)

	again, err := f.labels.FindOrCreate(f.ctx, "  状态判断 ", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	latin, err := f.labels.FindOrCreate(f.ctx, "Metric", "")
	require.NoError(t, err)
	same, err := f.labels.FindOrCreate(f.ctx, "METRIC", "")
	require.NoError(t, err)
	assert.Equal(t, latin.ID, same.ID)

	_, err = f.labels.FindOrCreate(f.ctx, "   ", "")
	assert.ErrorIs(t, err, ErrValidation)

	labels, err := f.labels.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, labels, 2)
}

func TestLabelCRUD(t *testing.T) {
	f := newFixture(t)

	label, err := f.labels.Create(f.ctx, "监控规则", "阈值")
	require.NoError(t, err)

	_, err = f.labels.Create(f.ctx, " 监控规则", "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.labels.Create(f.ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.labels.Update(f.ctx, label.ID, "预警规则", "新说明")
	require.NoError(t, err)
	assert.Equal(t, "预警规则", updated.LabelName)

	got, err := f.labels.Get(f.ctx, label.ID)
	require.NoError(t, err)
	assert.Equal(t, "新说明", got.Description)

	require.NoError(t, f.labels.Delete(f.ctx, label.ID))
	_, err = f.labels.Get(f.ctx, label.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.labels.Delete(f.ctx, label.ID), ErrNotFound)
}
