package skills

import (
	"math"
	"sort"
	"strings"
)

// ClassifierConfig names the confidence tuning knobs. The scoring is
// intentionally conservative: single-occurrence keyword hits are penalized
// so noisy mentions do not inflate into competency claims.
type ClassifierConfig struct {
	// VariantContribution is added per distinct matched variant.
	VariantContribution float64
	// MaxVariantContribution caps the distinct-variant part.
	MaxVariantContribution float64
	// RepeatBonusScale multiplies log1p(extra mentions).
	RepeatBonusScale float64
	// SingleMentionPenalty is subtracted when a tag was seen exactly once.
	SingleMentionPenalty float64
	// ConfidenceCap bounds the final confidence.
	ConfidenceCap float64
}

// DefaultClassifierConfig returns the reference tuning.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		VariantContribution:    25,
		MaxVariantContribution: 50,
		RepeatBonusScale:       12,
		SingleMentionPenalty:   10,
		ConfidenceCap:          70,
	}
}

// Detection is one classified skill with its confidence.
type Detection struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// Classifier detects taxonomy skills in text. Read-only after construction;
// safe for concurrent use.
type Classifier struct {
	tax *Taxonomy
	cfg ClassifierConfig
}

// NewClassifier builds a classifier over the embedded default taxonomy.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	tax, err := DefaultTaxonomy()
	if err != nil {
		return nil, err
	}
	return NewClassifierWithTaxonomy(tax, cfg), nil
}

// NewClassifierWithTaxonomy builds a classifier over a caller-supplied
// taxonomy, for tests and custom deployments.
func NewClassifierWithTaxonomy(tax *Taxonomy, cfg ClassifierConfig) *Classifier {
	return &Classifier{tax: tax, cfg: cfg}
}

// Taxonomy exposes the classifier's taxonomy for canonicalization and
// domain lookups.
func (c *Classifier) Taxonomy() *Taxonomy { return c.tax }

// Classify returns the detected skills ordered by descending confidence.
// Ties break alphabetically so output is deterministic.
func (c *Classifier) Classify(text string) []Detection {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var detections []Detection
	for _, skill := range c.tax.Skills {
		distinct := 0
		total := 0
		for _, variant := range skill.Variants {
			n := countMentions(lower, strings.ToLower(variant))
			if n > 0 {
				distinct++
				total += n
			}
		}
		if total == 0 {
			continue
		}
		detections = append(detections, Detection{
			Tag:        skill.Tag,
			Confidence: c.confidence(distinct, total),
		})
	}

	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Confidence != detections[j].Confidence {
			return detections[i].Confidence > detections[j].Confidence
		}
		return detections[i].Tag < detections[j].Tag
	})
	return detections
}

// confidence scores one tag from its mention counts: a capped contribution
// per distinct variant, a logarithmically diminishing bonus for repeats,
// and a penalty for tags mentioned exactly once.
func (c *Classifier) confidence(distinct, total int) float64 {
	conf := float64(distinct) * c.cfg.VariantContribution
	if conf > c.cfg.MaxVariantContribution {
		conf = c.cfg.MaxVariantContribution
	}
	conf += c.cfg.RepeatBonusScale * math.Log1p(float64(total-distinct))
	if total == 1 {
		conf -= c.cfg.SingleMentionPenalty
	}
	if conf < 0 {
		conf = 0
	}
	if conf > c.cfg.ConfidenceCap {
		conf = c.cfg.ConfidenceCap
	}
	return conf
}

// Tags extracts just the tag names from detections, preserving order.
func Tags(detections []Detection) []string {
	tags := make([]string, len(detections))
	for i, d := range detections {
		tags[i] = d.Tag
	}
	return tags
}

// countMentions counts boundary-delimited occurrences of variant in the
// lowercased text. A manual scan is used instead of \b regexes because
// variants like "c++", ".net" and "react.js" contain non-word characters.
func countMentions(lower, variant string) int {
	if variant == "" {
		return 0
	}
	count := 0
	for start := 0; ; {
		idx := strings.Index(lower[start:], variant)
		if idx < 0 {
			break
		}
		abs := start + idx
		if boundaryBefore(lower, abs) && boundaryAfter(lower, abs+len(variant)) {
			count++
		}
		start = abs + len(variant)
	}
	return count
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordChar(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	// "react" must not match inside "react.js", but a sentence-final
	// period is still a boundary.
	if s[i] == '.' && i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z' {
		return false
	}
	return !isWordChar(s[i])
}

// isWordChar treats letters, digits and the symbol characters that appear
// inside skill names ("c++", ".net") as word-forming.
func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '#':
		return true
	}
	return false
}
