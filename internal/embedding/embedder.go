// Package embedding provides a deterministic sentence embedder used for
// semantic similarity between candidate and job texts.
//
// The embedder is a non-neural feature-hashing model: BM25-weighted token
// stems, word bigrams and character trigrams are projected into a fixed
// dimension with signed FNV hashing, then unit-normalized. Identical input
// always yields an identical vector, which keeps match() deterministic
// within a process.
package embedding

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-matcher/internal/lexical"
)

// Dimension is the fixed embedding width D.
const Dimension = 256

// Feature-group weights. Empirically tuned; the exact split matters less
// than stems carrying the majority of the signal.
const (
	stemWeight     = 0.55
	bigramWeight   = 0.25
	charGramWeight = 0.20
)

// BM25 saturation parameters for the stem features.
const (
	bm25K1    = 1.2
	bm25B     = 0.75
	avgDocLen = 200.0
)

// Config controls provider construction.
type Config struct {
	// CacheSize bounds the per-text memoization cache.
	CacheSize int
}

// DefaultConfig returns the standard provider tuning.
func DefaultConfig() Config {
	return Config{CacheSize: 4096}
}

// Provider embeds texts into fixed-length vectors. One instance is built at
// service start and shared by all requests; it is read-only after
// construction and safe for concurrent use.
type Provider struct {
	cache *lru.Cache[string, []float32]
}

// New builds the provider. A construction failure is fatal for the caller:
// the process must refuse to serve matching requests rather than degrade.
func New(cfg Config) (*Provider, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	cache, err := lru.New[string, []float32](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("building embedding cache: %w", err)
	}
	return &Provider{cache: cache}, nil
}

// Embed maps text onto a unit vector of length Dimension. Deterministic for
// identical input; memoized per text.
func (p *Provider) Embed(text string) ([]float32, error) {
	if text == "" {
		return nil, &EmbedError{Reason: "empty text"}
	}
	if vec, ok := p.cache.Get(text); ok {
		return vec, nil
	}

	vec := make([]float32, Dimension)

	tokens := lexical.Tokenize(text)
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = lexical.Stem(tok)
	}

	addStemFeatures(vec, stems)
	addBigramFeatures(vec, stems)
	addCharGramFeatures(vec, text)

	if !normalize(vec) {
		return nil, &EmbedError{Reason: "no embeddable features", Text: text}
	}

	p.cache.Add(text, vec)
	return vec, nil
}

// BatchResult is the per-item outcome of EmbedBatch. A failed item carries
// its error; it never aborts the batch.
type BatchResult struct {
	Vector []float32
	Err    error
}

// EmbedBatch embeds texts concurrently with per-item isolation. The result
// slice is index-aligned with the input.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) []BatchResult {
	results := make([]BatchResult, len(texts))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Err: err}
				return nil
			}
			vec, err := p.Embed(text)
			results[i] = BatchResult{Vector: vec, Err: err}
			return nil // item errors stay per-item
		})
	}
	_ = g.Wait()
	return results
}

func addStemFeatures(vec []float32, stems []string) {
	if len(stems) == 0 {
		return
	}
	tf := make(map[string]int, len(stems))
	for _, s := range stems {
		tf[s]++
	}

	lenRatio := float64(len(stems)) / avgDocLen
	scores := make(map[string]float64, len(tf))
	var normSq float64
	for stem, count := range tf {
		// Zipf-style IDF estimate: longer stems are rarer.
		idf := math.Log(1 + float64(len(stem)))
		sat := (float64(count) * (bm25K1 + 1)) /
			(float64(count) + bm25K1*(1-bm25B+bm25B*lenRatio))
		score := idf * sat
		scores[stem] = score
		normSq += score * score
	}
	if normSq == 0 {
		return
	}
	inv := 1 / math.Sqrt(normSq)
	for stem, score := range scores {
		project(vec, fnv64(stem), float32(stemWeight*score*inv), 6)
	}
}

func addBigramFeatures(vec []float32, stems []string) {
	if len(stems) < 2 {
		return
	}
	n := len(stems) - 1
	w := float32(bigramWeight / math.Sqrt(float64(n)))
	for i := 0; i < n; i++ {
		project(vec, fnv64("bg:"+stems[i]+" "+stems[i+1]), w, 4)
	}
}

func addCharGramFeatures(vec []float32, text string) {
	const n = 3
	lower := []byte(text)
	for i := range lower {
		c := lower[i]
		if c >= 'A' && c <= 'Z' {
			lower[i] = c + 32
		}
	}
	if len(lower) < n {
		return
	}
	count := len(lower) - n + 1
	w := float32(charGramWeight / math.Sqrt(float64(count)))
	for i := 0; i < count; i++ {
		project(vec, fnv64(string(lower[i:i+n])), w, 3)
	}
}

// project spreads a hashed feature over several indices with alternating
// signs so collisions tend to cancel rather than accumulate.
func project(vec []float32, hash uint64, weight float32, projections int) {
	state := hash
	for j := 0; j < projections; j++ {
		state = state*6364136223846793005 + 1442695040888963407
		idx := int(state % uint64(len(vec)))
		sign := float32(1)
		if (hash>>uint(j))&1 == 0 {
			sign = -1
		}
		vec[idx] += weight * sign
	}
}

func fnv64(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// normalize scales vec to unit length in place. Returns false for the zero
// vector.
func normalize(vec []float32) bool {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return false
	}
	inv := float32(1 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= inv
	}
	return true
}

// EmbedError is a per-item embedding failure. It is surfaced for the single
// item only, never propagated to abort a whole batch.
type EmbedError struct {
	Reason string
	Text   string
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("embedding failed: %s", e.Reason)
}
