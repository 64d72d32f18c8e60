package domain

// Intent is the classified purpose of a user question. Fact questions get
// short direct answers, scenario questions get step-by-step guidance.
type Intent string

const (
	IntentFact     Intent = "fact"
	IntentScenario Intent = "scenario"
	IntentUnknown  Intent = "unknown"
)

// RawRecord is a corpus source record before validation and embedding.
// Fields beyond problem/clause/text carry through to prompt rendering.
type RawRecord struct {
	Problem  string
	Category string
	SignType string
	Code     string
	Clause   string
	Text     string
}

// CorpusEntry is one regulation record. Entries are built once at startup
// and never mutated. Index is the zero-based position in source order and
// serves as the entry identity for the process lifetime.
type CorpusEntry struct {
	Index     int
	Problem   string
	Category  string
	SignType  string
	Code      string
	Clause    string
	Text      string
	Embedding []float32
}

// Corpus owns the full entry set. Downstream structures refer to entries
// by index instead of copying them.
type Corpus struct {
	Entries   []CorpusEntry
	Dimension int
}

// RetrievalHit references a corpus entry with its relevance score in [0,1].
type RetrievalHit struct {
	EntryIndex int
	Score      float64
}

// Prompt is the composed generation input. NoMatch is set when no entry met
// the score cutoff and the prompt asks the generator to say so.
type Prompt struct {
	Text    string
	Intent  Intent
	NoMatch bool
}

// DocumentRef is the public projection of a retrieval hit. Score carries
// display rounding; ordering and cutoffs are driven by the internal score.
type DocumentRef struct {
	Problem string  `json:"problem"`
	Clause  string  `json:"clause"`
	Score   float64 `json:"score"`
}

// AnswerResponse is the outward contract of the query pipeline. Intent,
// Fallback and NoContext are internal observability fields and stay out of
// the wire format. NoContext is set when no evidence made it into the
// prompt, which can differ from an empty Documents list when the context
// budget drops every block.
type AnswerResponse struct {
	Answer    string        `json:"answer"`
	Documents []DocumentRef `json:"documents"`

	Intent    Intent `json:"-"`
	Fallback  bool   `json:"-"`
	NoContext bool   `json:"-"`
}
