package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-annotator-go/internal/model"
)

func TestRealign(t *testing.T) {
	t.Run("insertion shifts span", func(t *testing.T) {
		entities := []model.EntityItem{{ID: 1, TokenStart: 1, TokenEnd: 2, Text: "BC"}}
		result := Realign(
			[]string{"A", "B", "C", "D", "E"},
			[]string{"A", "X", "B", "C", "D", "E"},
			entities,
		)
		require.Len(t, result.Updated, 1)
		assert.Empty(t, result.Deleted)
		assert.Equal(t, 2, result.Updated[0].TokenStart)
		assert.Equal(t, 3, result.Updated[0].TokenEnd)
		assert.Equal(t, "BC", result.Updated[0].Text)
		// 入参不被修改
		assert.Equal(t, 1, entities[0].TokenStart)
	})

	t.Run("fully removed span is deleted", func(t *testing.T) {
		result := Realign(
			Tokenize("东城一网格超标"),
			Tokenize("东城超标"),
			[]model.EntityItem{
				{ID: 1, TokenStart: 2, TokenEnd: 4},
				{ID: 2, TokenStart: 5, TokenEnd: 6},
			},
		)
		require.Len(t, result.Deleted, 1)
		assert.Equal(t, uint(1), result.Deleted[0].ID)
		require.Len(t, result.Updated, 1)
		assert.Equal(t, 2, result.Updated[0].TokenStart)
		assert.Equal(t, 3, result.Updated[0].TokenEnd)
	})

	t.Run("interior deletion keeps bounding hull", func(t *testing.T) {
		result := Realign(
			[]string{"A", "B", "C", "D"},
			[]string{"A", "B", "D"},
			[]model.EntityItem{{ID: 1, TokenStart: 1, TokenEnd: 3}},
		)
		require.Len(t, result.Updated, 1)
		assert.Equal(t, 1, result.Updated[0].TokenStart)
		assert.Equal(t, 2, result.Updated[0].TokenEnd)
	})

	t.Run("unchanged content keeps spans", func(t *testing.T) {
		tokens := Tokenize("abcdef")
		entities := []model.EntityItem{{ID: 1, TokenStart: 0, TokenEnd: 2}, {ID: 2, TokenStart: 3, TokenEnd: 5}}
		result := Realign(tokens, tokens, entities)
		assert.Equal(t, entities, result.Updated)
		assert.Empty(t, result.Deleted)
	})

	t.Run("content cleared deletes everything", func(t *testing.T) {
		result := Realign(Tokenize("abc"), Tokenize(""), []model.EntityItem{{ID: 7, TokenStart: 0, TokenEnd: 1}})
		assert.Empty(t, result.Updated)
		require.Len(t, result.Deleted, 1)
		assert.Equal(t, uint(7), result.Deleted[0].ID)
	})
}
