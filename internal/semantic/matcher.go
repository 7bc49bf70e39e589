// Package semantic ranks job postings against a candidate text by
// combining embedding similarity with keyword overlap, missing-requirement
// coverage and an experience-fit penalty.
package semantic

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-matcher/internal/embedding"
	"github.com/jonathan/job-matcher/internal/experience"
	"github.com/jonathan/job-matcher/internal/lexical"
	"github.com/jonathan/job-matcher/internal/types"
)

const maxParallelJobs = 8

// Config names the semantic scoring knobs. The three weights must sum
// to 1 for scores to stay on the 0-100 band.
type Config struct {
	// SimilarityWeight scales cosine similarity between the embeddings.
	SimilarityWeight float64
	// KeywordWeight scales the shared-keyword factor.
	KeywordWeight float64
	// MissingWeight scales the requirement-coverage factor.
	MissingWeight float64
	// KeywordSaturation is the overlap count at which the keyword factor
	// reaches 1. More shared keywords past this point add nothing.
	KeywordSaturation int
	// MissingTermCount is how many top job terms are checked against the
	// candidate text.
	MissingTermCount int

	// LevelGapMajorPenalty applies when the job sits two or more seniority
	// bands above the candidate.
	LevelGapMajorPenalty float64
	// LevelGapMinorPenalty applies when the job sits one band above.
	LevelGapMinorPenalty float64
	// OverqualifiedPenalty applies when the candidate outranks the job.
	OverqualifiedPenalty float64
	// YearsGapMajorPenalty applies when the job asks for more than
	// YearsGapThreshold extra years.
	YearsGapMajorPenalty float64
	// YearsGapMinorPenalty applies for any smaller shortfall.
	YearsGapMinorPenalty float64
	// YearsGapThreshold separates the two years penalties.
	YearsGapThreshold int
	// InternSeniorCeiling caps the combined penalty when an intern-level
	// candidate meets a senior posting or vice versa.
	InternSeniorCeiling float64
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		SimilarityWeight:     0.5,
		KeywordWeight:        0.25,
		MissingWeight:        0.25,
		KeywordSaturation:    20,
		MissingTermCount:     10,
		LevelGapMajorPenalty: 0.3,
		LevelGapMinorPenalty: 0.6,
		OverqualifiedPenalty: 0.8,
		YearsGapMajorPenalty: 0.3,
		YearsGapMinorPenalty: 0.7,
		YearsGapThreshold:    2,
		InternSeniorCeiling:  0.2,
	}
}

// Result is one job's semantic evaluation. When Err is set the job could
// not be evaluated and Score is 0; the batch as a whole still succeeds.
type Result struct {
	Index               int
	Score               float64
	Similarity          float64
	CommonKeywords      []string
	MissingRequirements []string
	Experience          types.ExperienceMatch
	Err                 error
}

// MatchError reports a candidate-side failure that aborts the whole batch.
type MatchError struct {
	Stage string
	Cause error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("semantic match failed at %s: %v", e.Stage, e.Cause)
}

func (e *MatchError) Unwrap() error { return e.Cause }

// Matcher scores job batches. Stateless apart from the shared embedding
// provider; safe for concurrent use.
type Matcher struct {
	provider *embedding.Provider
	cfg      Config
}

// NewMatcher builds a semantic matcher on top of an embedding provider.
func NewMatcher(provider *embedding.Provider, cfg Config) *Matcher {
	return &Matcher{provider: provider, cfg: cfg}
}

// Rank evaluates the jobs at the given indices against the candidate text
// and returns results sorted by descending score, ties broken by ascending
// index. A nil indices slice means the whole batch. The scorer must have
// been built over the same job batch; it supplies the per-job top terms.
//
// Job-side failures are isolated: a job that cannot be embedded comes back
// with a zero score and its Err set, and never sinks its siblings.
func (m *Matcher) Rank(ctx context.Context, cvText string, jobs []types.JobPosting, scorer *lexical.Scorer, indices []int) ([]Result, error) {
	cvVec, err := m.provider.Embed(cvText)
	if err != nil {
		return nil, &MatchError{Stage: "candidate embedding", Cause: err}
	}
	cvTokens := lexical.TokenSet(cvText)
	cvStems := lexical.StemSet(cvText)
	cvInfo := experience.Extract(cvText)

	if indices == nil {
		indices = make([]int, len(jobs))
		for i := range indices {
			indices[i] = i
		}
	}

	results := make([]Result, len(indices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelJobs)

	for slot, jobIndex := range indices {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[slot] = Result{Index: jobIndex, Err: err}
				return nil
			}
			results[slot] = m.evaluate(cvVec, cvTokens, cvStems, cvInfo, jobs[jobIndex], jobIndex, scorer)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &MatchError{Stage: "batch evaluation", Cause: err}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})
	return results, nil
}

// evaluate scores a single job. Panics in scoring are converted into
// per-item errors so one malformed posting cannot take down a batch.
func (m *Matcher) evaluate(cvVec []float32, cvTokens, cvStems map[string]struct{}, cvInfo experience.Info, job types.JobPosting, jobIndex int, scorer *lexical.Scorer) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Index: jobIndex, Err: fmt.Errorf("evaluating job %d: %v", jobIndex, r)}
		}
	}()

	jobText := job.Text()
	jobVec, err := m.provider.Embed(jobText)
	if err != nil {
		return Result{Index: jobIndex, Err: err}
	}

	sim := embedding.Cosine(cvVec, jobVec)
	if sim < 0 {
		sim = 0
	}

	common := intersect(cvTokens, lexical.TokenSet(jobText))
	keywordFactor := math.Min(float64(len(common))/float64(m.cfg.KeywordSaturation), 1)

	missing := missingTerms(scorer.TopTerms(jobIndex, m.cfg.MissingTermCount), cvStems)
	missingFactor := 1 - float64(len(missing))/float64(m.cfg.MissingTermCount)
	if missingFactor < 0 {
		missingFactor = 0
	}

	expMatch := m.CompareExperience(cvInfo, experience.Extract(jobText))

	score := (m.cfg.SimilarityWeight*sim +
		m.cfg.KeywordWeight*keywordFactor +
		m.cfg.MissingWeight*missingFactor) * expMatch.Penalty * 100
	score = clamp(score, 0, 100)

	return Result{
		Index:               jobIndex,
		Score:               score,
		Similarity:          sim,
		CommonKeywords:      common,
		MissingRequirements: missing,
		Experience:          expMatch,
	}
}

// CompareExperience derives the experience penalty for a candidate/job
// pair. The level penalty and the years penalty are computed independently
// and the harsher one wins; an intern facing a senior posting (or the
// reverse) is additionally capped hard.
func (m *Matcher) CompareExperience(cv, job experience.Info) types.ExperienceMatch {
	levelPenalty := 1.0
	cvRank, cvOK := experience.Rank(cv.Level)
	jobRank, jobOK := experience.Rank(job.Level)
	if cvOK && jobOK {
		switch gap := jobRank - cvRank; {
		case gap >= 2:
			levelPenalty = m.cfg.LevelGapMajorPenalty
		case gap == 1:
			levelPenalty = m.cfg.LevelGapMinorPenalty
		case gap < 0:
			levelPenalty = m.cfg.OverqualifiedPenalty
		}
	}

	yearsPenalty := 1.0
	if job.Years > 0 {
		switch gap := job.Years - cv.Years; {
		case gap > m.cfg.YearsGapThreshold:
			yearsPenalty = m.cfg.YearsGapMajorPenalty
		case gap > 0:
			yearsPenalty = m.cfg.YearsGapMinorPenalty
		}
	}

	penalty := math.Min(levelPenalty, yearsPenalty)
	if (cv.IsIntern && job.IsSenior) || (cv.IsSenior && job.IsIntern) {
		penalty = math.Min(penalty, m.cfg.InternSeniorCeiling)
	}

	return types.ExperienceMatch{
		CVLevel:  cv.Level,
		JobLevel: job.Level,
		CVYears:  cv.Years,
		JobYears: job.Years,
		Penalty:  penalty,
	}
}

// intersect returns the sorted common members of two token sets.
func intersect(a, b map[string]struct{}) []string {
	if len(b) < len(a) {
		a, b = b, a
	}
	var common []string
	for tok := range a {
		if _, ok := b[tok]; ok {
			common = append(common, tok)
		}
	}
	sort.Strings(common)
	return common
}

// missingTerms filters the job's top terms down to those whose stem does
// not occur anywhere in the candidate text.
func missingTerms(terms []string, cvStems map[string]struct{}) []string {
	var missing []string
	for _, term := range terms {
		if _, ok := cvStems[lexical.Stem(term)]; !ok {
			missing = append(missing, term)
		}
	}
	return missing
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
