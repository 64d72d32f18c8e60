// Package memindex is a brute-force in-memory similarity index over the
// corpus embeddings. The corpus sizes this service targets (hundreds to low
// thousands of entries) make an O(n*d) scan per query cheap enough that no
// approximate-nearest-neighbor structure is needed; the SimilarityIndex port
// leaves room to swap one in.
//
// Score convention: cosine similarity mapped into [0,1] via (cos+1)/2. The
// encoder does not guarantee non-negative vector components, so raw cosine
// can be negative; the mapping keeps configured min-score thresholds
// meaningful. A zero-norm vector carries no angular information and scores 0.
package memindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// scoreEpsilon bounds the float tolerance for tie-breaking: hits whose
// scores differ by no more than this are ordered by corpus index.
const scoreEpsilon = 1e-6

const defaultTopK = 5

// Index holds all corpus embeddings in one contiguous slice. It is built
// once at startup and safe for concurrent reads without locking.
type Index struct {
	vectors   []float32
	norms     []float64
	dimension int
	count     int
}

// New builds the index from an embedded corpus. Every entry must carry a
// vector of the corpus dimension; a mismatch means two encoder
// configurations were mixed, which corrupts scores silently if let through.
func New(corpus *domain.Corpus) (*Index, error) {
	ix := &Index{
		dimension: corpus.Dimension,
		count:     len(corpus.Entries),
	}
	if ix.count == 0 {
		return ix, nil
	}
	if ix.dimension <= 0 {
		return nil, fmt.Errorf("corpus dimension must be positive, got %d", corpus.Dimension)
	}

	ix.vectors = make([]float32, 0, ix.count*ix.dimension)
	ix.norms = make([]float64, ix.count)
	for i, entry := range corpus.Entries {
		if len(entry.Embedding) != ix.dimension {
			return nil, fmt.Errorf("entry %d: vector dimension %d, index dimension %d",
				i, len(entry.Embedding), ix.dimension)
		}
		ix.vectors = append(ix.vectors, entry.Embedding...)
		ix.norms[i] = l2norm(entry.Embedding)
	}
	return ix, nil
}

// Search scores the query against every corpus vector and returns at most
// topK hits with score >= minScore, score-descending, ties by ascending
// corpus index so identical inputs always produce identical output.
func (ix *Index) Search(queryVector []float32, topK int, minScore float64) ([]domain.RetrievalHit, error) {
	if ix.count == 0 {
		return []domain.RetrievalHit{}, nil
	}
	if len(queryVector) != ix.dimension {
		return nil, fmt.Errorf("query vector dimension %d, index dimension %d",
			len(queryVector), ix.dimension)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	queryNorm := l2norm(queryVector)
	hits := make([]domain.RetrievalHit, 0, ix.count)
	for i := 0; i < ix.count; i++ {
		score := ix.score(i, queryVector, queryNorm)
		if score < minScore {
			continue
		}
		hits = append(hits, domain.RetrievalHit{EntryIndex: i, Score: score})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if math.Abs(hits[a].Score-hits[b].Score) > scoreEpsilon {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].EntryIndex < hits[b].EntryIndex
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Dimension reports the vector size the index was built with.
func (ix *Index) Dimension() int { return ix.dimension }

// Len reports the number of indexed entries.
func (ix *Index) Len() int { return ix.count }

func (ix *Index) score(row int, query []float32, queryNorm float64) float64 {
	entryNorm := ix.norms[row]
	if queryNorm == 0 || entryNorm == 0 {
		return 0
	}

	base := row * ix.dimension
	var dot float64
	for i := 0; i < ix.dimension; i++ {
		dot += float64(ix.vectors[base+i]) * float64(query[i])
	}

	cosine := dot / (queryNorm * entryNorm)
	// Clamp against float drift before mapping into [0,1].
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}
	return (cosine + 1) / 2
}

func l2norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
