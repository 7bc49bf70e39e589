// Package lexical scores texts against a job-text batch using a
// TF-IDF space rebuilt per batch. It is the cheap, keyword-sensitive
// counterpart to the embedding-based semantic matcher.
package lexical

import (
	"math"
	"sort"
)

// Config holds the tunable knobs of the lexical scorer. The caps and
// thresholds are genuine tuning parameters, kept named and overridable.
type Config struct {
	// ScoreCap bounds a single lexical score so it cannot dominate fusion.
	ScoreCap float64
	// ScoreScale maps cosine similarity onto the 0-100 band before capping.
	ScoreScale float64
	// QuickMatchTopK is the result count for the lexical-only fast path.
	QuickMatchTopK int
	// PrefilterThreshold is the corpus size above which the semantic pass
	// is pre-filtered lexically.
	PrefilterThreshold int
	// PrefilterLimit is the subset size the pre-filter reduces to.
	PrefilterLimit int
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		ScoreCap:           45,
		ScoreScale:         100,
		QuickMatchTopK:     20,
		PrefilterThreshold: 50,
		PrefilterLimit:     30,
	}
}

// DocScore is one document's lexical relevance to a query.
type DocScore struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Scorer holds a TF-IDF space over one job-text batch. It is built fresh
// per batch and is read-only afterwards, so concurrent Score calls are safe.
type Scorer struct {
	cfg  Config
	docs []map[string]float64 // per-doc normalized tf-idf weights
	idf  map[string]float64
	n    int
}

// NewScorer builds the TF-IDF space over the supplied corpus.
func NewScorer(corpus []string, cfg Config) *Scorer {
	n := len(corpus)
	tfs := make([]map[string]int, n)
	df := make(map[string]int)

	for i, text := range corpus {
		tf := make(map[string]int)
		for _, tok := range Tokenize(text) {
			tf[tok]++
		}
		tfs[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	idf := make(map[string]float64, len(df))
	for term, count := range df {
		// Smoothed IDF; never negative even for terms in every doc.
		idf[term] = math.Log(1 + float64(n)/float64(count))
	}

	docs := make([]map[string]float64, n)
	for i, tf := range tfs {
		docs[i] = normalizedVector(tf, idf)
	}

	return &Scorer{cfg: cfg, docs: docs, idf: idf, n: n}
}

// Len returns the corpus size.
func (s *Scorer) Len() int { return s.n }

// Score ranks every document against the query. Scores are non-negative,
// scaled and capped; 0 means no lexical overlap at all.
func (s *Scorer) Score(query string) []DocScore {
	tf := make(map[string]int)
	for _, tok := range Tokenize(query) {
		tf[tok]++
	}
	qv := normalizedVector(tf, s.idf)

	scores := make([]DocScore, s.n)
	for i, dv := range s.docs {
		raw := dot(qv, dv) * s.cfg.ScoreScale
		if raw > s.cfg.ScoreCap {
			raw = s.cfg.ScoreCap
		}
		scores[i] = DocScore{Index: i, Score: raw}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// TopK returns the k best-scoring documents for the quick-match path.
func (s *Scorer) TopK(query string, k int) []DocScore {
	if k <= 0 {
		k = s.cfg.QuickMatchTopK
	}
	scores := s.Score(query)
	if len(scores) > k {
		scores = scores[:k]
	}
	return scores
}

// Prefilter returns the document indices the expensive semantic pass should
// consider. Small corpora pass through untouched; large ones are reduced to
// the lexical top PrefilterLimit. Recall loss on the tail is accepted for
// bounded latency.
func (s *Scorer) Prefilter(query string) []int {
	if s.n <= s.cfg.PrefilterThreshold {
		indices := make([]int, s.n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	top := s.TopK(query, s.cfg.PrefilterLimit)
	indices := make([]int, len(top))
	for i, ds := range top {
		indices[i] = ds.Index
	}
	sort.Ints(indices) // keep input order stable for downstream ties
	return indices
}

// TopTerms returns the n most important terms of one document by tf-idf
// weight. Used to detect requirements missing from a candidate text.
func (s *Scorer) TopTerms(docIndex, n int) []string {
	if docIndex < 0 || docIndex >= s.n {
		return nil
	}

	type termWeight struct {
		term   string
		weight float64
	}
	weights := make([]termWeight, 0, len(s.docs[docIndex]))
	for term, w := range s.docs[docIndex] {
		weights = append(weights, termWeight{term, w})
	}
	sort.Slice(weights, func(i, j int) bool {
		if weights[i].weight != weights[j].weight {
			return weights[i].weight > weights[j].weight
		}
		return weights[i].term < weights[j].term
	})

	if len(weights) > n {
		weights = weights[:n]
	}
	terms := make([]string, len(weights))
	for i, tw := range weights {
		terms[i] = tw.term
	}
	return terms
}

// normalizedVector converts raw term frequencies into a unit-length tf-idf
// vector. Unknown terms (absent from the batch) are skipped.
func normalizedVector(tf map[string]int, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(tf))
	var normSq float64
	for term, count := range tf {
		w, ok := idf[term]
		if !ok {
			continue
		}
		weight := (1 + math.Log(float64(count))) * w
		vec[term] = weight
		normSq += weight * weight
	}
	if normSq == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(normSq)
	for term := range vec {
		vec[term] *= inv
	}
	return vec
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			sum += wa * wb
		}
	}
	return sum
}
