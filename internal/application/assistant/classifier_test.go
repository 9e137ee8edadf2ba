package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"book-ai-api/internal/domain/entity"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  entity.Route
	}{
		{"plain keyword", "give me a book recommendation", entity.RouteRecommendation},
		{"uppercase keyword", "RECOMMENDATION please", entity.RouteRecommendation},
		{"mixed case keyword", "Any Recommendations for sci-fi?", entity.RouteRecommendation},
		{"keyword embedded in word", "recommendations", entity.RouteRecommendation},
		{"keyword mid-sentence", "I'd love a recommendation, thanks", entity.RouteRecommendation},
		{"general question", "who wrote Dune?", entity.RouteGeneral},
		{"recommend without suffix", "can you recommend a book", entity.RouteGeneral},
		{"empty string", "", entity.RouteGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}
