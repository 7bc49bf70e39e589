package experience

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_ExplicitYears(t *testing.T) {
	info := Extract("5 years of experience, React, Node.js, frontend developer")

	assert.Equal(t, 5, info.Years)
	assert.Equal(t, LevelSenior, info.Level)
	assert.True(t, info.IsSenior)
	assert.False(t, info.IsIntern)
}

func TestExtract_FirstYearsMatchWins(t *testing.T) {
	info := Extract("3 years of Go, previously 10 years of PHP")

	assert.Equal(t, 3, info.Years)
	assert.Equal(t, LevelMid, info.Level)
}

func TestExtract_PlusYears(t *testing.T) {
	info := Extract("We need 2+ years React experience")

	assert.Equal(t, 2, info.Years)
	assert.Equal(t, LevelMid, info.Level)
}

func TestExtract_InternCueBeatsYears(t *testing.T) {
	// Intern cues take priority over everything, including an explicit
	// year count that would otherwise resolve to senior.
	info := Extract("5 years of experience, currently an intern")

	assert.Equal(t, LevelIntern, info.Level)
	assert.True(t, info.IsIntern)
	assert.Equal(t, 5, info.Years)
}

func TestExtract_ExplicitYearsBeatSeniorTitle(t *testing.T) {
	// A "senior" posting that asks for 2+ years is a mid-level posting.
	info := Extract("Require senior frontend developer with 2+ years React experience")

	assert.Equal(t, LevelMid, info.Level)
	assert.Equal(t, 2, info.Years)
	assert.True(t, info.IsSenior) // the cue is still reported
}

func TestExtract_SeniorCueWithoutYears(t *testing.T) {
	info := Extract("Lead engineer wanted for platform team")

	assert.Equal(t, LevelSenior, info.Level)
	assert.True(t, info.IsSenior)
	assert.Equal(t, 0, info.Years)
}

func TestExtract_MidCue(t *testing.T) {
	info := Extract("intermediate backend developer position")

	assert.Equal(t, LevelMid, info.Level)
}

func TestExtract_JuniorCue(t *testing.T) {
	info := Extract("entry-level QA role, great mentorship")

	assert.Equal(t, LevelJunior, info.Level)
}

func TestExtract_OneYearIsJunior(t *testing.T) {
	info := Extract("1 year of experience with Python")

	assert.Equal(t, LevelJunior, info.Level)
	assert.Equal(t, 1, info.Years)
}

func TestExtract_InternCueRequiresWordBoundary(t *testing.T) {
	// "intern" must not fire inside "internal" or "international".
	info := Extract("Maintain internal tools and dashboards, 7+ years of experience required")

	assert.False(t, info.IsIntern)
	assert.Equal(t, LevelSenior, info.Level)
	assert.Equal(t, 7, info.Years)

	info = Extract("Senior engineer at an international logistics company, 8 years")

	assert.False(t, info.IsIntern)
	assert.Equal(t, LevelSenior, info.Level)
}

func TestExtract_SeniorAndMidCuesRequireWordBoundaries(t *testing.T) {
	// "lead" inside "leadership" and "middle" inside "middleware" are not cues.
	info := Extract("Strong leadership culture and modern middleware stack")

	assert.Equal(t, LevelUnknown, info.Level)
	assert.False(t, info.IsSenior)
}

func TestExtract_NoSignals(t *testing.T) {
	info := Extract("We build delightful products for our customers")

	assert.Equal(t, LevelUnknown, info.Level)
	assert.Equal(t, 0, info.Years)
	assert.False(t, info.IsIntern)
	assert.False(t, info.IsSenior)
}

func TestExtract_InternVsSeniorScenario(t *testing.T) {
	cv := Extract("intern, no experience")
	job := Extract("Senior Engineering Manager, 10+ years required")

	assert.True(t, cv.IsIntern)
	assert.True(t, job.IsSenior)
	assert.Equal(t, LevelIntern, cv.Level)
	assert.Equal(t, LevelSenior, job.Level)
}

func TestRank_Ordering(t *testing.T) {
	intern, ok := Rank(LevelIntern)
	assert.True(t, ok)
	senior, ok := Rank(LevelSenior)
	assert.True(t, ok)
	assert.Less(t, intern, senior)

	_, ok = Rank(LevelUnknown)
	assert.False(t, ok)
}
