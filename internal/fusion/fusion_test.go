package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-matcher/internal/skills"
	"github.com/jonathan/job-matcher/internal/types"
)

func newFuser(t *testing.T) *Fuser {
	t.Helper()
	tax, err := skills.DefaultTaxonomy()
	require.NoError(t, err)
	return NewFuser(tax, DefaultSkillConfig())
}

func TestSkillScore_NoJobSkillsYieldsNeutralScore(t *testing.T) {
	f := newFuser(t)

	assert.Equal(t, 25.0, f.SkillScore([]string{"react", "golang"}, nil))
}

func TestSkillScore_ZeroOverlapSameDomainIsFloor(t *testing.T) {
	f := newFuser(t)

	// both sides are tech, so only the overlap floor applies
	assert.Equal(t, 15.0, f.SkillScore([]string{"react"}, []string{"python"}))
}

func TestSkillScore_FullCoverageHitsCeiling(t *testing.T) {
	f := newFuser(t)

	score := f.SkillScore([]string{"react", "typescript"}, []string{"react", "typescript"})

	assert.Equal(t, 75.0, score)
}

func TestSkillScore_CeilingTightensWithCoverage(t *testing.T) {
	f := newFuser(t)
	jobTags := []string{"react", "typescript", "javascript", "css", "html"}

	full := f.SkillScore(jobTags, jobTags)
	four := f.SkillScore([]string{"react", "typescript", "javascript", "css"}, jobTags)
	three := f.SkillScore([]string{"react", "typescript", "javascript"}, jobTags)
	one := f.SkillScore([]string{"react"}, jobTags)

	assert.Equal(t, 75.0, full)
	// 80% coverage: cap 65, minus the proportional mismatch penalty
	assert.InDelta(t, 15+0.8*50-20*0.2, four, 1e-9)
	// 60% coverage: cap 55
	assert.InDelta(t, 15+0.6*40-20*0.4, three, 1e-9)
	// 20% coverage: cap 45
	assert.InDelta(t, 15+0.2*30-20*0.8, one, 1e-9)
	assert.Greater(t, full, four)
	assert.Greater(t, four, three)
	assert.Greater(t, three, one)
}

func TestSkillScore_DisjointDomainsPenalized(t *testing.T) {
	f := newFuser(t)

	sameDomain := f.SkillScore([]string{"react"}, []string{"python"})
	crossDomain := f.SkillScore([]string{"react"}, []string{"nursing"})

	assert.Less(t, crossDomain, sameDomain)
	// floor 15 minus the disjoint-domain penalty clamps at 0
	assert.Equal(t, 0.0, crossDomain)
}

func TestSkillScore_PartialDomainOverlapPenalized(t *testing.T) {
	f := newFuser(t)

	// candidate covers tech only; job spans tech, finance and design, so
	// the domain ratio is 1/3 and the low-overlap penalty applies.
	covered := f.SkillScore(
		[]string{"react", "accounting", "figma"},
		[]string{"react", "accounting", "figma"},
	)
	thin := f.SkillScore(
		[]string{"react", "typescript"},
		[]string{"react", "accounting", "figma"},
	)

	assert.Greater(t, covered, thin)
}

func TestSkillScore_Bounds(t *testing.T) {
	f := newFuser(t)

	cases := [][2][]string{
		{{"react"}, {"nursing", "clinical_research"}},
		{{"react"}, {"react"}},
		{nil, {"react"}},
		{{"react"}, nil},
	}
	for _, c := range cases {
		score := f.SkillScore(c[0], c[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestNormalizeWeights_ScalesToUnitSum(t *testing.T) {
	w := NormalizeWeights(types.Weights{Semantic: 2, Lexical: 1, Skill: 1})

	assert.InDelta(t, 0.5, w.Semantic, 1e-9)
	assert.InDelta(t, 0.25, w.Lexical, 1e-9)
	assert.InDelta(t, 0.25, w.Skill, 1e-9)
}

func TestNormalizeWeights_NonPositiveFallsBackToDefaults(t *testing.T) {
	assert.Equal(t, DefaultWeights(), NormalizeWeights(types.Weights{}))
}

func TestFuse_WeightedAndClamped(t *testing.T) {
	b := types.ScoreBreakdown{Semantic: 80, Lexical: 40, SkillMatch: 50}

	score := Fuse(b, DefaultWeights())

	assert.InDelta(t, 0.5*80+0.3*40+0.2*50, score, 1e-9)
	assert.LessOrEqual(t, Fuse(types.ScoreBreakdown{Semantic: 1000}, DefaultWeights()), 100.0)
}
