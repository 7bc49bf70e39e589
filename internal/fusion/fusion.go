// Package fusion merges the semantic, lexical and skill-overlap signals
// into one bounded hybrid score with an explainable breakdown.
package fusion

import (
	"math"

	"github.com/jonathan/job-matcher/internal/skills"
	"github.com/jonathan/job-matcher/internal/types"
)

// DefaultWeights returns the general-pipeline fusion weights.
func DefaultWeights() types.Weights {
	return types.Weights{Semantic: 0.5, Lexical: 0.3, Skill: 0.2}
}

// HybridWeights returns the skill-heavier weights of the hybrid variant.
func HybridWeights() types.Weights {
	return types.Weights{Semantic: 0.5, Lexical: 0.2, Skill: 0.3}
}

// NormalizeWeights scales caller-supplied weights to sum to 1 so fused
// scores stay on the 0-100 band. Non-positive weight sets fall back to the
// defaults.
func NormalizeWeights(w types.Weights) types.Weights {
	sum := w.Semantic + w.Lexical + w.Skill
	if sum <= 0 {
		return DefaultWeights()
	}
	return types.Weights{
		Semantic: w.Semantic / sum,
		Lexical:  w.Lexical / sum,
		Skill:    w.Skill / sum,
	}
}

// SkillConfig names the skill-overlap scoring knobs. The scoring is
// deliberately pessimistic: even perfect coverage stays well below 100,
// and the ceiling tightens as coverage drops.
type SkillConfig struct {
	// NoJobSkillsScore is returned when the job declares no skills at all.
	NoJobSkillsScore float64
	// FloorScore is the near-floor result for zero overlap.
	FloorScore float64

	// Coverage tiers and their caps.
	FullCoverageMin float64
	FullCoverageCap float64
	HighCoverageMin float64
	HighCoverageCap float64
	MidCoverageMin  float64
	MidCoverageCap  float64
	LowCoverageCap  float64

	// MismatchPenaltyScale scales the subtraction proportional to the
	// uncovered share of job skills.
	MismatchPenaltyScale float64

	// Domain cross-check penalties, keyed on how much of the job's domain
	// set the candidate covers.
	DomainDisjointPenalty float64
	DomainThinPenalty     float64
	DomainThinThreshold   float64
	DomainLowPenalty      float64
	DomainLowThreshold    float64
}

// DefaultSkillConfig returns the reference tuning.
func DefaultSkillConfig() SkillConfig {
	return SkillConfig{
		NoJobSkillsScore:      25,
		FloorScore:            15,
		FullCoverageMin:       0.9,
		FullCoverageCap:       75,
		HighCoverageMin:       0.8,
		HighCoverageCap:       65,
		MidCoverageMin:        0.6,
		MidCoverageCap:        55,
		LowCoverageCap:        45,
		MismatchPenaltyScale:  20,
		DomainDisjointPenalty: 30,
		DomainThinPenalty:     15,
		DomainThinThreshold:   0.25,
		DomainLowPenalty:      10,
		DomainLowThreshold:    0.5,
	}
}

// Fuser computes skill-overlap scores and fuses score breakdowns. Read-only
// after construction; safe for concurrent use.
type Fuser struct {
	cfg SkillConfig
	tax *skills.Taxonomy
}

// NewFuser builds a fuser over the taxonomy used for domain lookups.
func NewFuser(tax *skills.Taxonomy, cfg SkillConfig) *Fuser {
	return &Fuser{cfg: cfg, tax: tax}
}

// SkillScore rates how well candidate skill tags cover the job's required
// tags, on the 0-100 band. Jobs without declared skills get a fixed neutral
// score rather than 0, so skill-silent postings are not buried.
func (f *Fuser) SkillScore(cvTags, jobTags []string) float64 {
	if len(jobTags) == 0 {
		return f.cfg.NoJobSkillsScore
	}

	cvSet := tagSet(cvTags)
	overlap := 0
	for _, tag := range jobTags {
		if _, ok := cvSet[tag]; ok {
			overlap++
		}
	}

	var score float64
	if overlap == 0 {
		score = f.cfg.FloorScore
	} else {
		coverage := float64(overlap) / float64(len(jobTags))
		ceiling := f.coverageCap(coverage)
		score = f.cfg.FloorScore + coverage*(ceiling-f.cfg.FloorScore)
		score -= f.cfg.MismatchPenaltyScale * (1 - coverage)
	}

	score -= f.domainPenalty(cvTags, jobTags)
	return clamp(score, 0, 100)
}

// coverageCap returns the ceiling for a given coverage ratio. High coverage
// earns a higher (but never full) ceiling.
func (f *Fuser) coverageCap(coverage float64) float64 {
	switch {
	case coverage >= f.cfg.FullCoverageMin:
		return f.cfg.FullCoverageCap
	case coverage >= f.cfg.HighCoverageMin:
		return f.cfg.HighCoverageCap
	case coverage >= f.cfg.MidCoverageMin:
		return f.cfg.MidCoverageCap
	default:
		return f.cfg.LowCoverageCap
	}
}

// domainPenalty cross-checks the coarse industry domains of the two tag
// sets. A frontend candidate scored against a nursing posting should not
// survive on incidental keyword overlap.
func (f *Fuser) domainPenalty(cvTags, jobTags []string) float64 {
	cvDomains := f.tax.DomainsFor(cvTags)
	jobDomains := f.tax.DomainsFor(jobTags)
	if len(cvDomains) == 0 || len(jobDomains) == 0 {
		return 0
	}

	cvSet := tagSet(cvDomains)
	shared := 0
	for _, d := range jobDomains {
		if _, ok := cvSet[d]; ok {
			shared++
		}
	}

	ratio := float64(shared) / float64(len(jobDomains))
	switch {
	case shared == 0:
		return f.cfg.DomainDisjointPenalty
	case ratio < f.cfg.DomainThinThreshold:
		return f.cfg.DomainThinPenalty
	case ratio < f.cfg.DomainLowThreshold:
		return f.cfg.DomainLowPenalty
	default:
		return 0
	}
}

// Fuse combines an already-normalized breakdown under the given weights.
func Fuse(b types.ScoreBreakdown, w types.Weights) float64 {
	return clamp(w.Semantic*b.Semantic+w.Lexical*b.Lexical+w.Skill*b.SkillMatch, 0, 100)
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
