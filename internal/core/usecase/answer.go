package usecase

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
	"github.com/kirillkom/roadsign-assistant/internal/core/ports"
)

// Deterministic degraded-mode answers. Retrieval and classification failures
// never surface as user-facing errors; they shrink the response instead.
const (
	answerEmptyQuestion = "Please provide a non-empty question about road signage."
	answerEncodingDown  = "The retrieval step failed, so no supporting regulations could be located. " +
		"Please try your question again."
	answerGenerationDown = "The answer generator is currently unavailable. Any regulations that " +
		"matched your question are listed below; please consult them directly."
)

// AnswerUseCase runs the single-shot query pipeline: classify, embed,
// search, compose, generate, assemble. The corpus and index are shared
// read-only state; each call is an independent stateless pipeline.
type AnswerUseCase struct {
	corpus     *domain.Corpus
	embedder   ports.Embedder
	index      ports.SimilarityIndex
	classifier ports.IntentClassifier
	generator  ports.AnswerGenerator
	composer   Composer

	topK       int
	minScore   float64
	genTimeout time.Duration
}

func NewAnswerUseCase(
	corpus *domain.Corpus,
	embedder ports.Embedder,
	index ports.SimilarityIndex,
	classifier ports.IntentClassifier,
	generator ports.AnswerGenerator,
	composer Composer,
	topK int,
	minScore float64,
	genTimeout time.Duration,
) *AnswerUseCase {
	if topK <= 0 {
		topK = 5
	}
	if genTimeout <= 0 {
		genTimeout = 30 * time.Second
	}
	return &AnswerUseCase{
		corpus:     corpus,
		embedder:   embedder,
		index:      index,
		classifier: classifier,
		generator:  generator,
		composer:   composer,
		topK:       topK,
		minScore:   minScore,
		genTimeout: genTimeout,
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question string) (*domain.AnswerResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return &domain.AnswerResponse{
			Answer:    answerEmptyQuestion,
			Documents: []domain.DocumentRef{},
			Intent:    domain.IntentUnknown,
			NoContext: true,
		}, nil
	}

	intent := uc.classifier.Classify(question)

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("query_embedding_failed", "error", err)
		return &domain.AnswerResponse{
			Answer:    answerEncodingDown,
			Documents: []domain.DocumentRef{},
			Intent:    intent,
			NoContext: true,
		}, nil
	}

	hits, err := uc.index.Search(queryVector, uc.topK, uc.minScore)
	if err != nil {
		slog.Warn("index_search_failed", "error", err)
		return &domain.AnswerResponse{
			Answer:    answerEncodingDown,
			Documents: []domain.DocumentRef{},
			Intent:    intent,
			NoContext: true,
		}, nil
	}

	prompt := uc.composer.Compose(question, uc.corpus, hits, intent)
	documents := uc.projectDocuments(hits)

	genCtx, cancel := context.WithTimeout(ctx, uc.genTimeout)
	defer cancel()

	answerText, err := uc.generator.Generate(genCtx, prompt.Text)
	if err != nil || strings.TrimSpace(answerText) == "" {
		// Caller disconnect abandons the response instead of retrying.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			slog.Warn("generation_failed", "error", err, "intent", string(intent))
		}
		return &domain.AnswerResponse{
			Answer:    answerGenerationDown,
			Documents: documents,
			Intent:    intent,
			Fallback:  true,
			NoContext: prompt.NoMatch,
		}, nil
	}

	return &domain.AnswerResponse{
		Answer:    answerText,
		Documents: documents,
		Intent:    intent,
		NoContext: prompt.NoMatch,
	}, nil
}

// projectDocuments maps surviving hits to their public triples in retrieval
// order. Scores are rounded to whole-percent granularity for display; the
// unrounded score already drove ordering and cutoffs.
func (uc *AnswerUseCase) projectDocuments(hits []domain.RetrievalHit) []domain.DocumentRef {
	out := make([]domain.DocumentRef, 0, len(hits))
	for _, hit := range hits {
		if hit.EntryIndex < 0 || hit.EntryIndex >= len(uc.corpus.Entries) {
			continue
		}
		entry := uc.corpus.Entries[hit.EntryIndex]
		out = append(out, domain.DocumentRef{
			Problem: entry.Problem,
			Clause:  entry.Clause,
			Score:   roundScore(hit.Score),
		})
	}
	return out
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
