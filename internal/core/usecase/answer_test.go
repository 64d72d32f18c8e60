package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/classifier/cue"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/vector/memindex"
)

type answerEmbedderFake struct {
	vector []float32
	err    error
}

func (f *answerEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *answerEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type generatorFake struct {
	prompt string
	answer string
	err    error
}

func (f *generatorFake) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func pipelineCorpus() *domain.Corpus {
	return &domain.Corpus{
		Dimension: 2,
		Entries: []domain.CorpusEntry{
			{Index: 0, Problem: "Missing stop sign", Clause: "4.2", Text: "Replace within 7 days of report.", Embedding: []float32{1, 0}},
			{Index: 1, Problem: "Faded speed limit", Clause: "5.1", Text: "Refurbish when retroreflectivity drops.", Embedding: []float32{0, 1}},
		},
	}
}

func newPipeline(t *testing.T, corpus *domain.Corpus, embedder *answerEmbedderFake, generator *generatorFake, minScore float64) *AnswerUseCase {
	t.Helper()
	index, err := memindex.New(corpus)
	if err != nil {
		t.Fatalf("memindex.New() error = %v", err)
	}
	classifier := cue.New(cue.DefaultTable())
	return NewAnswerUseCase(corpus, embedder, index, classifier, generator, NewComposer(0, 0), 5, minScore, time.Second)
}

func TestAnswerScenarioQuestionRetrievesMatchingRegulation(t *testing.T) {
	corpus := pipelineCorpus()
	embedder := &answerEmbedderFake{vector: []float32{1, 0}}
	generator := &generatorFake{answer: "Report it and replace the sign within 7 days per clause 4.2."}
	uc := newPipeline(t, corpus, embedder, generator, 0.6)

	got, err := uc.Answer(context.Background(), "A stop sign is missing at the intersection, what should I do?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Intent != domain.IntentScenario {
		t.Fatalf("intent = %s, want scenario", got.Intent)
	}
	if got.Answer != generator.answer {
		t.Fatalf("answer = %q", got.Answer)
	}
	if len(got.Documents) != 1 {
		t.Fatalf("documents = %+v, want exactly the stop-sign entry", got.Documents)
	}
	doc := got.Documents[0]
	if doc.Problem != "Missing stop sign" || doc.Clause != "4.2" || doc.Score != 1.0 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !strings.Contains(generator.prompt, "Replace within 7 days") {
		t.Fatalf("generator prompt missing evidence:\n%s", generator.prompt)
	}
	if got.NoContext {
		t.Fatalf("NoContext must be false when evidence reached the prompt")
	}
}

func TestAnswerFactQuestionClassifiesFact(t *testing.T) {
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{vector: []float32{1, 0}}, &generatorFake{answer: "2.1 metres."}, 0)

	got, err := uc.Answer(context.Background(), "What is the minimum height of a stop sign?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Intent != domain.IntentFact {
		t.Fatalf("intent = %s, want fact", got.Intent)
	}
}

func TestAnswerMixedCuesFallBackToUnknown(t *testing.T) {
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{vector: []float32{1, 0}}, &generatorFake{answer: "ok"}, 0)

	got, err := uc.Answer(context.Background(), "What is required when a sign is damaged?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Intent != domain.IntentUnknown {
		t.Fatalf("intent = %s, want unknown", got.Intent)
	}
}

func TestAnswerNoMatchStillGenerates(t *testing.T) {
	// Both entries score about 0.854 against [1,1], below the 0.9 cutoff.
	generator := &generatorFake{answer: "No matching regulation was found; in general, report the issue."}
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{vector: []float32{1, 1}}, generator, 0.9)

	got, err := uc.Answer(context.Background(), "Are temporary event banners regulated?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(got.Documents) != 0 {
		t.Fatalf("documents = %+v, want none", got.Documents)
	}
	if got.Answer != generator.answer {
		t.Fatalf("answer = %q", got.Answer)
	}
	if !strings.Contains(generator.prompt, "no directly matching regulation was found") {
		t.Fatalf("prompt should instruct the no-match disclaimer:\n%s", generator.prompt)
	}
	if !got.NoContext {
		t.Fatalf("NoContext must be true when nothing met the cutoff")
	}
}

func TestAnswerNoContextWhenBudgetDropsAllEvidence(t *testing.T) {
	corpus := pipelineCorpus()
	index, err := memindex.New(corpus)
	if err != nil {
		t.Fatalf("memindex.New() error = %v", err)
	}
	// A one-character budget keeps no evidence block, so the prompt carries
	// the no-match instruction even though retrieval found a document.
	uc := NewAnswerUseCase(
		corpus,
		&answerEmbedderFake{vector: []float32{1, 0}},
		index,
		cue.New(cue.DefaultTable()),
		&generatorFake{answer: "ok"},
		NewComposer(6, 1),
		5, 0.6, time.Second,
	)

	got, err := uc.Answer(context.Background(), "A stop sign is missing, what should I do?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(got.Documents) != 1 {
		t.Fatalf("documents = %+v, want the retrieved entry", got.Documents)
	}
	if !got.NoContext {
		t.Fatalf("NoContext must follow the prompt, not the document count")
	}
}

func TestAnswerEmptyQuestionIsHandledWithoutPipeline(t *testing.T) {
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{err: errors.New("must not be called")}, &generatorFake{err: errors.New("must not be called")}, 0)

	got, err := uc.Answer(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != answerEmptyQuestion {
		t.Fatalf("answer = %q", got.Answer)
	}
	if len(got.Documents) != 0 {
		t.Fatalf("documents = %+v, want none", got.Documents)
	}
}

func TestAnswerEncodingFailureDegradesGracefully(t *testing.T) {
	embedder := &answerEmbedderFake{err: domain.WrapError(domain.ErrEncoding, "embed query", errors.New("encoder down"))}
	uc := newPipeline(t, pipelineCorpus(), embedder, &generatorFake{answer: "unused"}, 0)

	got, err := uc.Answer(context.Background(), "What is the minimum height of a stop sign?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != answerEncodingDown {
		t.Fatalf("answer = %q", got.Answer)
	}
	if len(got.Documents) != 0 {
		t.Fatalf("documents = %+v, want none", got.Documents)
	}
	if got.Intent != domain.IntentFact {
		t.Fatalf("intent should still be classified, got %s", got.Intent)
	}
	if !got.NoContext {
		t.Fatalf("a degraded response carries no evidence, NoContext must be true")
	}
}

func TestAnswerGenerationFailureKeepsDocuments(t *testing.T) {
	generator := &generatorFake{err: domain.WrapError(domain.ErrGeneration, "generate", errors.New("provider 500"))}
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{vector: []float32{1, 0}}, generator, 0.6)

	got, err := uc.Answer(context.Background(), "A stop sign is missing, what should I do?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !got.Fallback {
		t.Fatalf("expected fallback response")
	}
	if got.Answer != answerGenerationDown {
		t.Fatalf("answer = %q", got.Answer)
	}
	if len(got.Documents) != 1 || got.Documents[0].Problem != "Missing stop sign" {
		t.Fatalf("fallback must keep retrieved documents, got %+v", got.Documents)
	}
}

// blockingGeneratorFake never answers; it waits out the generation deadline
// and surfaces the expiry the way a real provider call would.
type blockingGeneratorFake struct{}

func (f *blockingGeneratorFake) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAnswerGenerationTimeoutFallsBackWithDocuments(t *testing.T) {
	corpus := pipelineCorpus()
	index, err := memindex.New(corpus)
	if err != nil {
		t.Fatalf("memindex.New() error = %v", err)
	}
	uc := NewAnswerUseCase(
		corpus,
		&answerEmbedderFake{vector: []float32{1, 0}},
		index,
		cue.New(cue.DefaultTable()),
		&blockingGeneratorFake{},
		NewComposer(0, 0),
		5, 0.6, 50*time.Millisecond,
	)

	got, err := uc.Answer(context.Background(), "A stop sign is missing, what should I do?")
	if err != nil {
		t.Fatalf("a generation deadline must not surface as an error, got %v", err)
	}
	if !got.Fallback {
		t.Fatalf("expected fallback response")
	}
	if got.Answer != answerGenerationDown {
		t.Fatalf("answer = %q", got.Answer)
	}
	if len(got.Documents) != 1 || got.Documents[0].Problem != "Missing stop sign" {
		t.Fatalf("timeout fallback must keep retrieved documents, got %+v", got.Documents)
	}
}

func TestAnswerBlankGenerationIsTreatedAsFailure(t *testing.T) {
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{vector: []float32{1, 0}}, &generatorFake{answer: "  \n "}, 0.6)

	got, err := uc.Answer(context.Background(), "A stop sign is missing, what should I do?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !got.Fallback || got.Answer != answerGenerationDown {
		t.Fatalf("blank generation should fall back, got %+v", got)
	}
}

func TestAnswerCallerCancellationPropagates(t *testing.T) {
	generator := &generatorFake{err: context.Canceled}
	uc := newPipeline(t, pipelineCorpus(), &answerEmbedderFake{vector: []float32{1, 0}}, generator, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Answer(ctx, "A stop sign is missing, what should I do?")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnswerEmptyCorpusStillAnswers(t *testing.T) {
	corpus := &domain.Corpus{Entries: []domain.CorpusEntry{}}
	generator := &generatorFake{answer: "No regulations are loaded; in general, report the issue."}
	uc := newPipeline(t, corpus, &answerEmbedderFake{vector: []float32{1, 0}}, generator, 0)

	got, err := uc.Answer(context.Background(), "A stop sign is missing, what should I do?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(got.Documents) != 0 {
		t.Fatalf("documents = %+v, want none", got.Documents)
	}
	if got.Answer != generator.answer {
		t.Fatalf("answer = %q", got.Answer)
	}
	if !strings.Contains(generator.prompt, "no directly matching regulation was found") {
		t.Fatalf("prompt should fall back to the no-match instruction:\n%s", generator.prompt)
	}
}

func TestAnswerScoresRoundedForDisplay(t *testing.T) {
	corpus := &domain.Corpus{
		Dimension: 2,
		Entries: []domain.CorpusEntry{
			{Index: 0, Problem: "Missing stop sign", Clause: "4.2", Text: "t", Embedding: []float32{1, 1}},
		},
	}
	// cos([1,0],[1,1]) = 1/sqrt(2); mapped score 0.8535..., displayed as 0.85.
	uc := newPipeline(t, corpus, &answerEmbedderFake{vector: []float32{1, 0}}, &generatorFake{answer: "ok"}, 0)

	got, err := uc.Answer(context.Background(), "A stop sign is missing, what should I do?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(got.Documents) != 1 || got.Documents[0].Score != 0.85 {
		t.Fatalf("documents = %+v, want score 0.85", got.Documents)
	}
}
