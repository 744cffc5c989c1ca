package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-annotator-go/internal/model"
)

func (f *fixture) createPrompt(t *testing.T, name, taskType, text string) *model.PromptTemplate {
	t.Helper()
	p, err := f.prompts.Create(f.ctx, PromptInput{Name: name, TaskType: taskType, TemplateText: text})
	require.NoError(t, err)
	return p
}

func TestPromptCreateValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]PromptInput{
		"name":         {TaskType: model.TaskEntityExtraction, TemplateText: "x"},
		"taskType":     {Name: "a", TemplateText: "x"},
		"templateText": {Name: "a", TaskType: model.TaskEntityExtraction, TemplateText: "  "},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.prompts.Create(f.ctx, in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), field)
		})
	}

	p := f.createPrompt(t, " 抽取 ", model.TaskEntityExtraction, "识别实体")
	assert.Equal(t, "抽取", p.Name)
	assert.Equal(t, 1, p.Version)
	assert.False(t, p.IsActive)
}

func TestPromptUpdateBumpsVersion(t *testing.T) {
	f := newFixture(t)
	p := f.createPrompt(t, "抽取", model.TaskEntityExtraction, "识别实体")

	renamed, err := f.prompts.Update(f.ctx, p.ID, PromptInput{Name: "抽取v2", Description: "说明"})
	require.NoError(t, err)
	assert.Equal(t, 1, renamed.Version, "metadata changes keep the version")

	changed, err := f.prompts.Update(f.ctx, p.ID, PromptInput{TemplateText: "识别全部实体"})
	require.NoError(t, err)
	assert.Equal(t, 2, changed.Version)

	changed, err = f.prompts.Update(f.ctx, p.ID, PromptInput{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, 3, changed.Version)

	got, err := f.prompts.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "识别全部实体", got.TemplateText)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 3, got.Version)

	_, err = f.prompts.Update(f.ctx, 999, PromptInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromptSetActive(t *testing.T) {
	f := newFixture(t)
	first := f.createPrompt(t, "a", model.TaskEntityExtraction, "一")
	second := f.createPrompt(t, "b", model.TaskEntityExtraction, "二")
	other := f.createPrompt(t, "c", "summary", "三")

	_, err := f.prompts.Active(f.ctx, model.TaskEntityExtraction)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.prompts.SetActive(f.ctx, first.ID, true)
	require.NoError(t, err)
	_, err = f.prompts.SetActive(f.ctx, other.ID, true)
	require.NoError(t, err)
	activated, err := f.prompts.SetActive(f.ctx, second.ID, true)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	active, err := f.prompts.Active(f.ctx, model.TaskEntityExtraction)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	got, err := f.prompts.Get(f.ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	got, err = f.prompts.Get(f.ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "other task types are untouched")

	_, err = f.prompts.Update(f.ctx, second.ID, PromptInput{TaskType: "summary"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.prompts.SetActive(f.ctx, second.ID, false)
	require.NoError(t, err)
	_, err = f.prompts.Active(f.ctx, model.TaskEntityExtraction)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.prompts.SetActive(f.ctx, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromptListAndDelete(t *testing.T) {
	f := newFixture(t)
	a := f.createPrompt(t, "a", model.TaskEntityExtraction, "一")
	_, err := f.prompts.Create(f.ctx, PromptInput{Name: "b", TaskType: "summary", TemplateText: "二", Model: "qwen"})
	require.NoError(t, err)

	all, err := f.prompts.List(f.ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byTask, err := f.prompts.List(f.ctx, model.TaskEntityExtraction, "")
	require.NoError(t, err)
	require.Len(t, byTask, 1)
	assert.Equal(t, a.ID, byTask[0].ID)

	byModel, err := f.prompts.List(f.ctx, "", "qwen")
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, "b", byModel[0].Name)

	require.NoError(t, f.prompts.Delete(f.ctx, a.ID))
	assert.ErrorIs(t, f.prompts.Delete(f.ctx, a.ID), ErrNotFound)
}
