package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// Composer assembles the generation prompt from the query, the retrieved
// evidence and the classified intent, under a bounded context budget.
type Composer struct {
	MaxEntries int
	MaxChars   int
}

const (
	defaultMaxEntries = 6
	defaultMaxChars   = 4000
)

const composerRole = "You are a senior traffic engineer specializing in IRC:67-2022 road signage regulations.\n" +
	"Answer using ONLY the information in the reference documents below."

const (
	shapeFact = "The question asks for a specific fact. Give a short, direct factual answer " +
		"(1-3 sentences). No steps, no repair instructions."
	shapeScenario = "The question describes a real situation. Answer with: 1) what the issue is, " +
		"2) the relevant IRC clause, 3) a step-by-step fix, 4) placement or height rules if present " +
		"in the documents. Limit the answer to 200 words."
	shapeUnknown = "Give a balanced answer grounded in the reference documents, direct first, " +
		"followed by any relevant steps."
)

const noMatchInstruction = "No regulation in the corpus matched this question. State clearly that " +
	"no directly matching regulation was found, then answer from general road-signage knowledge."

func NewComposer(maxEntries, maxChars int) Composer {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return Composer{MaxEntries: maxEntries, MaxChars: maxChars}
}

// Compose builds the prompt. Evidence entries are rendered whole; when the
// character budget would overflow, the lowest-score entries are dropped
// entirely rather than truncated mid-clause.
func (c Composer) Compose(question string, corpus *domain.Corpus, hits []domain.RetrievalHit, intent domain.Intent) domain.Prompt {
	var b strings.Builder
	b.WriteString(composerRole)
	b.WriteString("\n\n")
	b.WriteString(answerShape(intent))
	b.WriteString("\n\n")

	kept := c.renderEvidence(corpus, hits)
	noMatch := len(kept) == 0
	if noMatch {
		b.WriteString(noMatchInstruction)
	} else {
		b.WriteString("REFERENCE DOCUMENTS:\n")
		b.WriteString(strings.Join(kept, "\n"))
	}

	b.WriteString("\n\nUSER QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n")

	return domain.Prompt{
		Text:    b.String(),
		Intent:  intent,
		NoMatch: noMatch,
	}
}

// renderEvidence returns the evidence blocks that fit the budget. Hits come
// in score-descending order, so dropping from the tail drops lowest first.
func (c Composer) renderEvidence(corpus *domain.Corpus, hits []domain.RetrievalHit) []string {
	if len(hits) > c.MaxEntries {
		hits = hits[:c.MaxEntries]
	}

	blocks := make([]string, 0, len(hits))
	used := 0
	for i, hit := range hits {
		if hit.EntryIndex < 0 || hit.EntryIndex >= len(corpus.Entries) {
			continue
		}
		block := renderEntry(i+1, corpus.Entries[hit.EntryIndex], hit.Score)
		if used+len(block) > c.MaxChars {
			break
		}
		blocks = append(blocks, block)
		used += len(block)
	}
	return blocks
}

func renderEntry(position int, entry domain.CorpusEntry, score float64) string {
	return fmt.Sprintf(
		"[Doc %d | Score=%.3f]\nProblem: %s\nCategory: %s\nType: %s\nCode: %s\nClause: %s\nDescription: %s\n",
		position,
		score,
		entry.Problem,
		entry.Category,
		entry.SignType,
		entry.Code,
		entry.Clause,
		entry.Text,
	)
}

func answerShape(intent domain.Intent) string {
	switch intent {
	case domain.IntentFact:
		return shapeFact
	case domain.IntentScenario:
		return shapeScenario
	default:
		return shapeUnknown
	}
}
