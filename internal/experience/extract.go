// Package experience extracts seniority level and years-of-experience
// signals from free-form CV and job-posting text.
package experience

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-matcher/internal/lexical"
)

// Level is a discrete seniority band.
type Level string

const (
	LevelIntern  Level = "intern"
	LevelJunior  Level = "junior"
	LevelMid     Level = "mid"
	LevelSenior  Level = "senior"
	LevelUnknown Level = "unknown"
)

// Years thresholds that map explicit experience counts onto levels.
const (
	seniorYearsThreshold = 5
	midYearsThreshold    = 2
)

// Info holds the experience signals derived from one text.
type Info struct {
	Level    Level `json:"level"`
	Years    int   `json:"years"`
	IsIntern bool  `json:"is_intern"`
	IsSenior bool  `json:"is_senior"`
}

// yearsPattern matches "3 years", "2+ years of experience", "10 yrs", etc.
// The first match in the text wins.
var yearsPattern = regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)

var internCues = []string{
	"intern", "internship", "fresher", "trainee", "no experience",
}

var seniorCues = []string{
	"senior", "lead", "principal", "staff engineer", "manager",
	"director", "head of", "architect",
}

var midCues = []string{
	"mid-level", "mid level", "midlevel", "intermediate", "middle",
}

var juniorCues = []string{
	"junior", "entry level", "entry-level", "graduate", "associate",
}

// Extract derives experience signals from free text.
//
// Level precedence: intern cues beat everything; an explicitly stated year
// count beats title cues (a "senior developer" posting asking for "2+ years"
// is a mid-level posting); title cues decide when no year count is present.
func Extract(text string) Info {
	lower := strings.ToLower(text)

	tokens := lexical.TokenSet(lower)

	years := extractYears(lower)
	hasIntern := hasCue(lower, tokens, internCues)
	hasSenior := hasCue(lower, tokens, seniorCues)
	hasMid := hasCue(lower, tokens, midCues)
	hasJunior := hasCue(lower, tokens, juniorCues)

	level := deriveLevel(years, hasIntern, hasSenior, hasMid, hasJunior)

	return Info{
		Level:    level,
		Years:    years,
		IsIntern: hasIntern || level == LevelIntern,
		IsSenior: hasSenior || level == LevelSenior,
	}
}

// extractYears returns the first explicit year count in the text, or 0.
func extractYears(lower string) int {
	m := yearsPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil || years < 0 {
		return 0
	}
	return years
}

func deriveLevel(years int, hasIntern, hasSenior, hasMid, hasJunior bool) Level {
	switch {
	case hasIntern:
		return LevelIntern
	case years >= seniorYearsThreshold:
		return LevelSenior
	case years >= midYearsThreshold:
		return LevelMid
	case years > 0:
		return LevelJunior
	case hasSenior:
		return LevelSenior
	case hasMid:
		return LevelMid
	case hasJunior:
		return LevelJunior
	default:
		return LevelUnknown
	}
}

// hasCue matches single-word cues against the text's token set and
// multi-word or hyphenated cues as substrings, so "intern" never fires
// inside "internal" or "international", nor "lead" inside "leadership".
func hasCue(lower string, tokens map[string]struct{}, cues []string) bool {
	for _, cue := range cues {
		if strings.ContainsAny(cue, " -") {
			if strings.Contains(lower, cue) {
				return true
			}
			continue
		}
		if _, ok := tokens[cue]; ok {
			return true
		}
	}
	return false
}

// Rank maps a level onto a comparable ordinal. Unknown has no rank; callers
// must check the second return value before comparing.
func Rank(l Level) (int, bool) {
	switch l {
	case LevelIntern:
		return 0, true
	case LevelJunior:
		return 1, true
	case LevelMid:
		return 2, true
	case LevelSenior:
		return 3, true
	default:
		return 0, false
	}
}
