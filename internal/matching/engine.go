// Package matching wires the scoring pipeline together: filtering,
// lexical pre-pass, semantic ranking and hybrid fusion behind one Match
// entry point.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/dispatch"
	"github.com/jonathan/job-matcher/internal/embedding"
	"github.com/jonathan/job-matcher/internal/experience"
	"github.com/jonathan/job-matcher/internal/fusion"
	"github.com/jonathan/job-matcher/internal/lexical"
	"github.com/jonathan/job-matcher/internal/semantic"
	"github.com/jonathan/job-matcher/internal/skills"
	"github.com/jonathan/job-matcher/internal/types"
)

// Scoring methods selectable per request.
const (
	MethodTransformer = "transformer"
	MethodTFIDF       = "tfidf"
	MethodHybrid      = "hybrid"
)

// defaultMaxJobs bounds how many postings one request may score.
const defaultMaxJobs = 500

// Options control one match invocation.
type Options struct {
	// Method selects the pipeline; empty defaults to hybrid.
	Method string
	// FastMode reduces large corpora to the lexical top candidates before
	// the semantic pass. Recall loss on the tail is the accepted trade-off
	// for bounded latency.
	FastMode bool
	// CheckSkills filters the corpus to jobs mentioning at least one of
	// the required skills before scoring.
	CheckSkills bool
	// CheckLocation filters by the Location field.
	CheckLocation bool
	// CheckExperience filters by the Level field.
	CheckExperience bool
	// Location, Category and Level are the filter values.
	Location string
	Category string
	Level    string
	// Weights override the fusion weights for the hybrid method.
	Weights *types.Weights
	// MaxJobs caps the corpus size; 0 means the engine default.
	MaxJobs int
}

// Request is one match invocation.
type Request struct {
	CandidateText  string
	RequiredSkills []string
	Jobs           []types.JobPosting
	Options        Options
}

// ValidationError reports a request the engine refuses to score.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid match request: %s: %s", e.Field, e.Message)
}

// Config aggregates the tuning of every pipeline stage.
type Config struct {
	Embedding  embedding.Config
	Semantic   semantic.Config
	Lexical    lexical.Config
	Skill      fusion.SkillConfig
	Classifier skills.ClassifierConfig
	Dispatch   dispatch.Config
	MaxJobs    int
}

// DefaultConfig returns the reference tuning for the whole pipeline.
func DefaultConfig() Config {
	return Config{
		Embedding:  embedding.DefaultConfig(),
		Semantic:   semantic.DefaultConfig(),
		Lexical:    lexical.DefaultConfig(),
		Skill:      fusion.DefaultSkillConfig(),
		Classifier: skills.DefaultClassifierConfig(),
		Dispatch:   dispatch.DefaultConfig(),
		MaxJobs:    defaultMaxJobs,
	}
}

// Engine runs the matching pipeline. Read-only after construction; safe
// for concurrent use.
type Engine struct {
	cfg        Config
	provider   *embedding.Provider
	matcher    *semantic.Matcher
	classifier *skills.Classifier
	fuser      *fusion.Fuser
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// New builds an engine from config. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = defaultMaxJobs
	}

	provider, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("building embedding provider: %w", err)
	}
	classifier, err := skills.NewClassifier(cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("building skill classifier: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		provider:   provider,
		matcher:    semantic.NewMatcher(provider, cfg.Semantic),
		classifier: classifier,
		fuser:      fusion.NewFuser(classifier.Taxonomy(), cfg.Skill),
		dispatcher: dispatch.New(cfg.Dispatch),
		logger:     logger,
	}, nil
}

// Match validates and scores one request. The heavy pass runs on the
// dispatcher so concurrent requests share a bounded worker budget.
// Identical requests yield identical scores within one process.
func (e *Engine) Match(ctx context.Context, req Request) (*types.MatchResponse, error) {
	if strings.TrimSpace(req.CandidateText) == "" {
		return nil, &ValidationError{Field: "candidateText", Message: "must not be empty"}
	}
	method := req.Options.Method
	if method == "" {
		method = MethodHybrid
	}
	switch method {
	case MethodTransformer, MethodTFIDF, MethodHybrid:
	default:
		return nil, &ValidationError{Field: "method", Message: fmt.Sprintf("unknown method %q", method)}
	}

	cvInfo := experience.Extract(req.CandidateText)
	if len(req.Jobs) == 0 {
		return &types.MatchResponse{CVInfo: cvInfo, JobMatches: []types.MatchResult{}}, nil
	}

	jobs := req.Jobs
	maxJobs := req.Options.MaxJobs
	if maxJobs <= 0 || maxJobs > e.cfg.MaxJobs {
		maxJobs = e.cfg.MaxJobs
	}
	if len(jobs) > maxJobs {
		e.logger.Warn("corpus truncated",
			zap.Int("supplied", len(jobs)),
			zap.Int("max", maxJobs))
		jobs = jobs[:maxJobs]
	}

	return dispatch.Run(ctx, e.dispatcher, func(ctx context.Context) (*types.MatchResponse, error) {
		return e.run(ctx, req, method, cvInfo, jobs)
	})
}

// run executes the pipeline inside a dispatcher worker.
func (e *Engine) run(ctx context.Context, req Request, method string, cvInfo experience.Info, jobs []types.JobPosting) (*types.MatchResponse, error) {
	cvSkills := e.classifier.Classify(req.CandidateText)

	filtered, origIndex := e.filterJobs(jobs, req)
	if len(filtered) == 0 {
		return &types.MatchResponse{CVInfo: cvInfo, JobMatches: []types.MatchResult{}}, nil
	}

	corpus := make([]string, len(filtered))
	for i, job := range filtered {
		corpus[i] = job.Text()
	}
	scorer := lexical.NewScorer(corpus, e.cfg.Lexical)

	var (
		matches []types.MatchResult
		err     error
	)
	switch method {
	case MethodTFIDF:
		matches = e.runLexical(req.CandidateText, filtered, origIndex, scorer)
	case MethodTransformer:
		matches, err = e.runSemantic(ctx, req, filtered, origIndex, scorer)
	case MethodHybrid:
		matches, err = e.runHybrid(ctx, req, filtered, origIndex, scorer, cvSkills)
	}
	if err != nil {
		return nil, err
	}

	resp := &types.MatchResponse{CVInfo: cvInfo, JobMatches: matches}
	if method == MethodHybrid {
		resp.HybridInfo = &types.HybridInfo{
			Method:             method,
			Weights:            e.hybridWeights(req.Options.Weights),
			CVSkills:           cvSkills,
			TotalJobsProcessed: len(filtered),
		}
	}
	return resp, nil
}

// runLexical is the cheap TF-IDF-only path: top-K by lexical score.
func (e *Engine) runLexical(cvText string, jobs []types.JobPosting, origIndex []int, scorer *lexical.Scorer) []types.MatchResult {
	top := scorer.TopK(cvText, e.cfg.Lexical.QuickMatchTopK)
	matches := make([]types.MatchResult, 0, len(top))
	for _, ds := range top {
		job := jobs[ds.Index]
		matches = append(matches, types.MatchResult{
			JobIndex:       origIndex[ds.Index],
			JobID:          job.ID,
			Score:          ds.Score,
			Breakdown:      types.ScoreBreakdown{Lexical: ds.Score},
			DetectedSkills: e.classifier.Classify(job.Text()),
		})
	}
	return matches
}

// runSemantic is the transformer path: embedding-based scoring, optionally
// over the lexically pre-filtered corpus.
func (e *Engine) runSemantic(ctx context.Context, req Request, jobs []types.JobPosting, origIndex []int, scorer *lexical.Scorer) ([]types.MatchResult, error) {
	cvText := req.CandidateText
	indices := e.candidateIndices(req, cvText, scorer)
	results, err := e.matcher.Rank(ctx, cvText, jobs, scorer, indices)
	if err != nil {
		return nil, err
	}

	matches := make([]types.MatchResult, 0, len(results))
	for _, res := range results {
		matches = append(matches, e.toMatch(res, jobs, origIndex, types.ScoreBreakdown{Semantic: res.Score}, res.Score))
	}
	return matches, nil
}

// runHybrid fuses the semantic, lexical and skill-overlap signals.
func (e *Engine) runHybrid(ctx context.Context, req Request, jobs []types.JobPosting, origIndex []int, scorer *lexical.Scorer, cvSkills []skills.Detection) ([]types.MatchResult, error) {
	cvText := req.CandidateText
	indices := e.candidateIndices(req, cvText, scorer)

	semResults, err := e.matcher.Rank(ctx, cvText, jobs, scorer, indices)
	if err != nil {
		return nil, err
	}

	lexByIndex := make(map[int]float64, scorer.Len())
	for _, ds := range scorer.Score(cvText) {
		lexByIndex[ds.Index] = ds.Score
	}

	cvTags := skills.Tags(cvSkills)
	weights := e.hybridWeights(req.Options.Weights)

	matches := make([]types.MatchResult, 0, len(semResults))
	for _, res := range semResults {
		job := jobs[res.Index]
		jobSkills := e.classifier.Classify(job.Text())
		breakdown := types.ScoreBreakdown{
			Semantic:   res.Score,
			Lexical:    lexByIndex[res.Index],
			SkillMatch: e.fuser.SkillScore(cvTags, skills.Tags(jobSkills)),
		}
		match := e.toMatch(res, jobs, origIndex, breakdown, fusion.Fuse(breakdown, weights))
		match.DetectedSkills = jobSkills
		if res.Err == nil {
			match.Notes = matchNotes(breakdown, res.Experience, res.MissingRequirements)
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].JobIndex < matches[j].JobIndex
	})
	return matches, nil
}

// toMatch converts one semantic result into a response entry. Failed items
// keep a zero score and carry the failure in Notes.
func (e *Engine) toMatch(res semantic.Result, jobs []types.JobPosting, origIndex []int, breakdown types.ScoreBreakdown, score float64) types.MatchResult {
	job := jobs[res.Index]
	match := types.MatchResult{
		JobIndex:            origIndex[res.Index],
		JobID:               job.ID,
		Score:               score,
		Breakdown:           breakdown,
		CommonKeywords:      res.CommonKeywords,
		MissingRequirements: res.MissingRequirements,
		Experience:          res.Experience,
	}
	if res.Err != nil {
		match.Score = 0
		match.Breakdown = types.ScoreBreakdown{}
		match.Notes = fmt.Sprintf("scoring failed: %v", res.Err)
	}
	return match
}

// matchNotes creates a brief explanation of one ranked match.
func matchNotes(b types.ScoreBreakdown, exp types.ExperienceMatch, missing []string) string {
	var parts []string

	if b.SkillMatch >= 65 {
		parts = append(parts, "Strong skill coverage")
	} else if b.SkillMatch >= 45 {
		parts = append(parts, "Moderate skill coverage")
	} else {
		parts = append(parts, "Weak skill coverage")
	}

	if exp.Penalty <= 0.3 {
		parts = append(parts, fmt.Sprintf("Experience mismatch (%s role, %s candidate)", exp.JobLevel, exp.CVLevel))
	} else if exp.Penalty < 1 {
		parts = append(parts, fmt.Sprintf("Experience gap (%s role, %s candidate)", exp.JobLevel, exp.CVLevel))
	}

	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("Missing: %s", strings.Join(missing, ", ")))
	}

	return strings.Join(parts, "; ")
}

// candidateIndices picks which jobs the semantic pass evaluates. Fast mode
// applies the lexical prefilter; otherwise the whole batch is scored.
func (e *Engine) candidateIndices(req Request, cvText string, scorer *lexical.Scorer) []int {
	if !req.Options.FastMode {
		return nil
	}
	return scorer.Prefilter(cvText)
}

// hybridWeights resolves the effective fusion weights for a request.
func (e *Engine) hybridWeights(override *types.Weights) types.Weights {
	if override == nil {
		return fusion.HybridWeights()
	}
	return fusion.NormalizeWeights(*override)
}

// filterJobs applies the enabled corpus filters and returns the surviving
// jobs plus their original indices, preserving input order.
func (e *Engine) filterJobs(jobs []types.JobPosting, req Request) ([]types.JobPosting, []int) {
	var requiredTags map[string]struct{}
	if req.Options.CheckSkills && len(req.RequiredSkills) > 0 {
		requiredTags = make(map[string]struct{}, len(req.RequiredSkills))
		for _, s := range req.RequiredSkills {
			if tag := e.classifier.Taxonomy().Canonical(s); tag != "" {
				requiredTags[tag] = struct{}{}
			}
		}
	}

	var (
		filtered  []types.JobPosting
		origIndex []int
	)
	for i, job := range jobs {
		if requiredTags != nil && !e.jobMentionsAny(job, requiredTags) {
			continue
		}
		if req.Options.CheckLocation && req.Options.Location != "" &&
			!strings.Contains(strings.ToLower(job.Location), strings.ToLower(req.Options.Location)) {
			continue
		}
		if req.Options.Category != "" &&
			!strings.EqualFold(job.Category, req.Options.Category) {
			continue
		}
		if req.Options.CheckExperience && req.Options.Level != "" &&
			string(experience.Extract(job.Text()).Level) != strings.ToLower(req.Options.Level) {
			continue
		}
		filtered = append(filtered, job)
		origIndex = append(origIndex, i)
	}
	return filtered, origIndex
}

// jobMentionsAny reports whether a job's classified skills intersect the
// required tag set.
func (e *Engine) jobMentionsAny(job types.JobPosting, required map[string]struct{}) bool {
	for _, det := range e.classifier.Classify(job.Text()) {
		if _, ok := required[det.Tag]; ok {
			return true
		}
	}
	return false
}
