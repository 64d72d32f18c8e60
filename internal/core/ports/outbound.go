package ports

import (
	"context"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// CorpusSource yields raw regulation records in stable order.
type CorpusSource interface {
	Load(ctx context.Context) ([]domain.RawRecord, error)
}

// Embedder maps text to fixed-length dense vectors. Corpus entries and
// queries must go through the same encoder configuration.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SimilarityIndex answers nearest-neighbor queries over the corpus vectors.
// Results are score-descending, at most topK long, all scores >= minScore.
type SimilarityIndex interface {
	Search(queryVector []float32, topK int, minScore float64) ([]domain.RetrievalHit, error)
}

// IntentClassifier determines the purpose of a query. Implementations must
// be pure functions of the query text and their own configuration.
type IntentClassifier interface {
	Classify(text string) domain.Intent
}

// AnswerGenerator turns a composed prompt into natural-language text.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
