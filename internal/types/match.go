// Package types defines the data shapes shared across the matching
// pipeline: job postings going in, score-annotated match results coming
// out.
package types

import (
	"github.com/jonathan/job-matcher/internal/experience"
	"github.com/jonathan/job-matcher/internal/skills"
)

// JobPosting is one corpus entry supplied to the matcher. The corpus is
// provided per request; this core never owns it.
type JobPosting struct {
	ID              string `json:"id"`
	Title           string `json:"title,omitempty"`
	RequirementText string `json:"requirement_text"`
	SkillsText      string `json:"skills_text,omitempty"`
	Location        string `json:"location,omitempty"`
	Category        string `json:"category,omitempty"`
}

// Text returns the combined searchable text of a posting.
func (j JobPosting) Text() string {
	text := j.RequirementText
	if j.SkillsText != "" {
		text += " " + j.SkillsText
	}
	return text
}

// ScoreBreakdown explains how a fused score was composed. Components are
// each on the 0-100 band before weighting.
type ScoreBreakdown struct {
	Semantic   float64 `json:"semantic"`
	Lexical    float64 `json:"lexical"`
	SkillMatch float64 `json:"skill_match"`
}

// ExperienceMatch summarizes the candidate-vs-job seniority comparison.
type ExperienceMatch struct {
	CVLevel  experience.Level `json:"cv_level"`
	JobLevel experience.Level `json:"job_level"`
	CVYears  int              `json:"cv_years"`
	JobYears int              `json:"job_years"`
	// Penalty is the combined multiplicative experience penalty in (0, 1].
	Penalty float64 `json:"penalty"`
}

// MatchResult is one scored job. Immutable once produced; regenerated per
// request unless served from cache. Every score is clamped to [0, 100];
// zero means "no match", never "error".
type MatchResult struct {
	JobIndex            int                `json:"job_index"`
	JobID               string             `json:"job_id,omitempty"`
	Score               float64            `json:"score"`
	Breakdown           ScoreBreakdown     `json:"breakdown"`
	DetectedSkills      []skills.Detection `json:"detected_skills,omitempty"`
	MissingRequirements []string           `json:"missing_requirements,omitempty"`
	CommonKeywords      []string           `json:"common_keywords,omitempty"`
	Experience          ExperienceMatch    `json:"experience"`
	Notes               string             `json:"notes,omitempty"`
	// IsSaved reflects the requesting user's live saved-jobs list. It is
	// annotated after cache retrieval and never cached itself.
	IsSaved bool `json:"is_saved"`
}

// Weights are the fusion weights for the three signals. They are genuine
// tuning knobs and therefore caller-overridable.
type Weights struct {
	Semantic float64 `json:"semantic"`
	Lexical  float64 `json:"lexical"`
	Skill    float64 `json:"skill"`
}

// HybridInfo is the extra metadata returned by the hybrid pipeline.
type HybridInfo struct {
	Method             string             `json:"method"`
	Weights            Weights            `json:"weights"`
	CVSkills           []skills.Detection `json:"cv_skills,omitempty"`
	TotalJobsProcessed int                `json:"total_jobs_processed"`
}

// MatchResponse is the outcome of one match() invocation: either a fully
// ranked result set or (at the transport layer) a structured error, never
// partial results.
type MatchResponse struct {
	CVInfo     experience.Info `json:"cv_info"`
	JobMatches []MatchResult   `json:"job_matches"`
	HybridInfo *HybridInfo     `json:"hybrid_info,omitempty"`
}
