package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/embedding"
	"github.com/jonathan/job-matcher/internal/experience"
	"github.com/jonathan/job-matcher/internal/lexical"
	"github.com/jonathan/job-matcher/internal/types"
)

func newMatcher(t *testing.T) *Matcher {
	t.Helper()
	provider, err := embedding.New(embedding.DefaultConfig())
	require.NoError(t, err)
	return NewMatcher(provider, DefaultConfig())
}

func rankJobs(t *testing.T, m *Matcher, cvText string, jobs []types.JobPosting) []Result {
	t.Helper()
	corpus := make([]string, len(jobs))
	for i, j := range jobs {
		corpus[i] = j.Text()
	}
	scorer := lexical.NewScorer(corpus, lexical.DefaultConfig())
	results, err := m.Rank(context.Background(), cvText, jobs, scorer, nil)
	require.NoError(t, err)
	return results
}

func TestRank_RelevantJobOutscoresUnrelated(t *testing.T) {
	m := newMatcher(t)
	cv := "Frontend developer, 4 years building React and TypeScript applications with Redux and REST APIs"
	jobs := []types.JobPosting{
		{ID: "frontend", RequirementText: "Frontend developer building React applications with TypeScript and REST APIs"},
		{ID: "nurse", RequirementText: "Registered nurse providing patient care in a clinical hospital environment"},
	}

	results := rankJobs(t, m, cv, jobs)

	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRank_ScoresWithinBounds(t *testing.T) {
	m := newMatcher(t)
	cv := "Backend engineer, 3 years of Go and PostgreSQL"
	jobs := []types.JobPosting{
		{RequirementText: "Senior Go backend engineer, 6+ years, Kubernetes and PostgreSQL"},
		{RequirementText: "Go developer with PostgreSQL, 3 years experience"},
		{RequirementText: "Contract law specialist for compliance reviews"},
	}

	for _, res := range rankJobs(t, m, cv, jobs) {
		require.NoError(t, res.Err)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)
	}
}

func TestRank_ReportsCommonKeywordsAndMissingRequirements(t *testing.T) {
	m := newMatcher(t)
	cv := "Python developer using Django and PostgreSQL"
	jobs := []types.JobPosting{
		{RequirementText: "Python developer with Django, Kubernetes and Terraform expertise"},
	}

	results := rankJobs(t, m, cv, jobs)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].CommonKeywords, "python")
	assert.Contains(t, results[0].CommonKeywords, "django")
	assert.Contains(t, results[0].MissingRequirements, "kubernetes")
	assert.NotContains(t, results[0].MissingRequirements, "python")
}

func TestRank_EmptyCandidateFails(t *testing.T) {
	m := newMatcher(t)
	scorer := lexical.NewScorer([]string{"some job"}, lexical.DefaultConfig())

	_, err := m.Rank(context.Background(), "   ", []types.JobPosting{{RequirementText: "some job"}}, scorer, nil)

	var matchErr *MatchError
	require.ErrorAs(t, err, &matchErr)
	assert.Equal(t, "candidate embedding", matchErr.Stage)
}

func TestRank_PerItemIsolation(t *testing.T) {
	m := newMatcher(t)
	cv := "Experienced React developer"
	jobs := []types.JobPosting{
		{ID: "good", RequirementText: "React developer position"},
		{ID: "broken"}, // no text at all
	}

	results := rankJobs(t, m, cv, jobs)

	require.Len(t, results, 2)
	byIndex := map[int]Result{}
	for _, r := range results {
		byIndex[r.Index] = r
	}
	assert.NoError(t, byIndex[0].Err)
	assert.Error(t, byIndex[1].Err)
	assert.Zero(t, byIndex[1].Score)
}

func TestRank_HonorsIndicesSubset(t *testing.T) {
	m := newMatcher(t)
	cv := "Go developer"
	jobs := []types.JobPosting{
		{RequirementText: "Go backend role"},
		{RequirementText: "Another Go backend role"},
		{RequirementText: "Marketing manager role"},
	}
	corpus := make([]string, len(jobs))
	for i, j := range jobs {
		corpus[i] = j.Text()
	}
	scorer := lexical.NewScorer(corpus, lexical.DefaultConfig())

	results, err := m.Rank(context.Background(), cv, jobs, scorer, []int{0, 2})

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, 1, r.Index)
	}
}

func TestCompareExperience_SeniorPostingWithLowYearsIsMidLevel(t *testing.T) {
	m := newMatcher(t)
	cv := experience.Extract("Professional with 5 years of React experience")
	job := experience.Extract("Require senior frontend developer with 2+ years React experience")

	match := m.CompareExperience(cv, job)

	assert.Equal(t, experience.LevelSenior, match.CVLevel)
	assert.Equal(t, experience.LevelMid, match.JobLevel)
	// candidate outranks the posting: mild overqualification penalty only
	assert.InDelta(t, 0.8, match.Penalty, 1e-9)
}

func TestCompareExperience_InternVsSeniorIsClamped(t *testing.T) {
	m := newMatcher(t)
	cv := experience.Extract("Computer science intern looking for a first role")
	job := experience.Extract("Senior staff engineer, 8+ years required")

	match := m.CompareExperience(cv, job)

	assert.LessOrEqual(t, match.Penalty, 0.2)
}

func TestCompareExperience_YearsShortfall(t *testing.T) {
	m := newMatcher(t)
	cv := experience.Extract("Developer with 3 years of experience")
	job := experience.Extract("Developer role requiring 4 years of experience")

	match := m.CompareExperience(cv, job)

	// one year short: minor years penalty, levels equal
	assert.InDelta(t, 0.7, match.Penalty, 1e-9)
}

func TestCompareExperience_LargeYearsShortfall(t *testing.T) {
	m := newMatcher(t)
	cv := experience.Extract("Junior developer, 1 year of experience")
	job := experience.Extract("Architect needed, 9+ years of experience")

	match := m.CompareExperience(cv, job)

	assert.InDelta(t, 0.3, match.Penalty, 1e-9)
}

func TestCompareExperience_UnknownLevelsNoLevelPenalty(t *testing.T) {
	m := newMatcher(t)
	cv := experience.Extract("I enjoy solving problems")
	job := experience.Extract("Help us solve problems")

	match := m.CompareExperience(cv, job)

	assert.Equal(t, experience.LevelUnknown, match.CVLevel)
	assert.InDelta(t, 1.0, match.Penalty, 1e-9)
}
