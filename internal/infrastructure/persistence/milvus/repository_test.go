package milvus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-ai-api/internal/domain/entity"
)

func bh(id int64, title string, score float32) *entity.BookHit {
	return &entity.BookHit{ID: id, Title: title, Score: score}
}

func TestMergeHits(t *testing.T) {
	t.Run("dedupes by id keeping higher score", func(t *testing.T) {
		content := []*entity.BookHit{bh(1, "Dune", 0.9), bh(2, "Hyperion", 0.8)}
		description := []*entity.BookHit{bh(1, "Dune", 0.95), bh(3, "Foundation", 0.7)}

		merged := mergeHits(content, description)
		require.Len(t, merged, 3)
		assert.Equal(t, int64(1), merged[0].ID)
		assert.InDelta(t, 0.95, float64(merged[0].Score), 1e-6)
		assert.Equal(t, int64(2), merged[1].ID)
		assert.Equal(t, int64(3), merged[2].ID)
	})

	t.Run("sorts by descending score", func(t *testing.T) {
		merged := mergeHits(
			[]*entity.BookHit{bh(1, "a", 0.1), bh(2, "b", 0.5)},
			[]*entity.BookHit{bh(3, "c", 0.3)},
		)
		require.Len(t, merged, 3)
		assert.Equal(t, []int64{2, 3, 1}, []int64{merged[0].ID, merged[1].ID, merged[2].ID})
	})

	t.Run("equal scores break ties by id", func(t *testing.T) {
		merged := mergeHits(
			[]*entity.BookHit{bh(5, "e", 0.5), bh(2, "b", 0.5)},
			[]*entity.BookHit{bh(4, "d", 0.5)},
		)
		require.Len(t, merged, 3)
		assert.Equal(t, []int64{2, 4, 5}, []int64{merged[0].ID, merged[1].ID, merged[2].ID})
	})

	t.Run("handles empty and nil input", func(t *testing.T) {
		assert.Empty(t, mergeHits(nil, nil))
		assert.Empty(t, mergeHits([]*entity.BookHit{nil}, nil))
	})
}
