package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
	"github.com/kirillkom/roadsign-assistant/internal/core/ports"
)

// CorpusBuildUseCase loads the regulation corpus and embeds every entry.
// This runs once at startup; the resulting corpus is immutable afterwards
// and the embedding of each entry is never recomputed per query.
type CorpusBuildUseCase struct {
	source   ports.CorpusSource
	embedder ports.Embedder
}

func NewCorpusBuildUseCase(source ports.CorpusSource, embedder ports.Embedder) *CorpusBuildUseCase {
	return &CorpusBuildUseCase{
		source:   source,
		embedder: embedder,
	}
}

// Build returns the fully embedded corpus or an ErrCorpusLoad failure.
// A record without descriptive text is rejected instead of skipped: a
// silently dropped record is a gap in regulatory coverage.
func (uc *CorpusBuildUseCase) Build(ctx context.Context) (*domain.Corpus, error) {
	records, err := uc.source.Load(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCorpusLoad, "load corpus source", err)
	}
	if len(records) == 0 {
		return &domain.Corpus{Entries: []domain.CorpusEntry{}}, nil
	}

	texts := make([]string, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Text) == "" {
			return nil, domain.WrapError(
				domain.ErrCorpusLoad,
				"validate corpus record",
				domain.WrapError(domain.ErrInvalidInput, "check record text",
					fmt.Errorf("record %d (problem=%q): empty text", i, rec.Problem)),
			)
		}
		texts = append(texts, EmbeddingText(rec))
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCorpusLoad, "embed corpus",
			domain.WrapError(domain.ErrEncoding, "embed entries", err))
	}
	if len(vectors) != len(records) {
		return nil, domain.WrapError(domain.ErrCorpusLoad, "embed corpus",
			fmt.Errorf("vectors/records mismatch: %d/%d", len(vectors), len(records)))
	}

	dimension := len(vectors[0])
	if dimension == 0 {
		return nil, domain.WrapError(domain.ErrCorpusLoad, "embed corpus",
			fmt.Errorf("encoder returned zero-length vector"))
	}

	entries := make([]domain.CorpusEntry, 0, len(records))
	for i, rec := range records {
		if len(vectors[i]) != dimension {
			return nil, domain.WrapError(domain.ErrCorpusLoad, "embed corpus",
				fmt.Errorf("record %d: vector dimension %d, expected %d", i, len(vectors[i]), dimension))
		}
		entries = append(entries, domain.CorpusEntry{
			Index:     i,
			Problem:   rec.Problem,
			Category:  rec.Category,
			SignType:  rec.SignType,
			Code:      rec.Code,
			Clause:    rec.Clause,
			Text:      rec.Text,
			Embedding: vectors[i],
		})
	}

	return &domain.Corpus{Entries: entries, Dimension: dimension}, nil
}

// EmbeddingText renders the labeled representation of a record that is fed
// to the encoder. Queries are encoded as plain text against this layout.
func EmbeddingText(rec domain.RawRecord) string {
	var b strings.Builder
	b.WriteString("Problem: " + rec.Problem + "\n")
	b.WriteString("Category: " + rec.Category + "\n")
	b.WriteString("Type: " + rec.SignType + "\n")
	b.WriteString("Code: " + rec.Code + "\n")
	b.WriteString("Clause: " + rec.Clause + "\n")
	b.WriteString("Description: " + rec.Text)
	return b.String()
}
