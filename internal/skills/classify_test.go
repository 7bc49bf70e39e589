package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultClassifierConfig())
	require.NoError(t, err)
	return c
}

func TestLoadTaxonomy_EmbeddedIsValid(t *testing.T) {
	tax, err := DefaultTaxonomy()

	require.NoError(t, err)
	assert.NotEmpty(t, tax.Skills)
}

func TestLoadTaxonomy_RejectsMissingFields(t *testing.T) {
	_, err := LoadTaxonomy([]byte(`{"skills": [{"tag": "react"}]}`))

	var taxErr *TaxonomyError
	assert.ErrorAs(t, err, &taxErr)
}

func TestLoadTaxonomy_RejectsDuplicateTags(t *testing.T) {
	doc := `{"version": 1, "skills": [
		{"tag": "react", "variants": ["react"], "domain": "tech"},
		{"tag": "react", "variants": ["reactjs"], "domain": "tech"}
	]}`

	_, err := LoadTaxonomy([]byte(doc))

	var taxErr *TaxonomyError
	require.ErrorAs(t, err, &taxErr)
	assert.Contains(t, taxErr.Error(), "duplicate")
}

func TestClassify_DetectsVariants(t *testing.T) {
	c := newTestClassifier(t)

	detections := c.Classify("Built UIs with React and React Native, deployed on AWS")

	tags := Tags(detections)
	assert.Contains(t, tags, "react")
	assert.Contains(t, tags, "aws")
}

func TestClassify_OrderedByDescendingConfidence(t *testing.T) {
	c := newTestClassifier(t)

	// react appears via two variants and repeatedly; kafka once.
	detections := c.Classify("React, reactjs, React everywhere. Also some kafka.")

	require.GreaterOrEqual(t, len(detections), 2)
	for i := 1; i < len(detections); i++ {
		assert.GreaterOrEqual(t, detections[i-1].Confidence, detections[i].Confidence)
	}
	assert.Equal(t, "react", detections[0].Tag)
}

func TestClassify_SingleMentionIsPenalized(t *testing.T) {
	c := newTestClassifier(t)
	cfg := DefaultClassifierConfig()

	single := c.Classify("some kafka exposure")
	repeated := c.Classify("kafka kafka kafka pipelines")

	require.Len(t, single, 1)
	require.Len(t, repeated, 1)
	assert.Equal(t, cfg.VariantContribution-cfg.SingleMentionPenalty, single[0].Confidence)
	assert.Greater(t, repeated[0].Confidence, single[0].Confidence)
}

func TestClassify_ConfidenceCapped(t *testing.T) {
	c := newTestClassifier(t)
	cfg := DefaultClassifierConfig()

	text := ""
	for i := 0; i < 50; i++ {
		text += "react reactjs react.js react native "
	}
	detections := c.Classify(text)

	require.NotEmpty(t, detections)
	assert.LessOrEqual(t, detections[0].Confidence, cfg.ConfidenceCap)
	assert.Equal(t, cfg.ConfidenceCap, detections[0].Confidence)
}

func TestClassify_WordBoundaries(t *testing.T) {
	c := newTestClassifier(t)

	// "javascript" must not produce a "java" detection.
	tags := Tags(c.Classify("expert javascript developer"))

	assert.Contains(t, tags, "javascript")
	assert.NotContains(t, tags, "java")
}

func TestClassify_DottedVariants(t *testing.T) {
	c := newTestClassifier(t)

	tags := Tags(c.Classify("services in node.js and asp.net"))

	assert.Contains(t, tags, "nodejs")
	assert.Contains(t, tags, "csharp")
}

func TestClassify_EmptyText(t *testing.T) {
	c := newTestClassifier(t)

	assert.Nil(t, c.Classify("   "))
}

func TestCanonical_MapsVariantsToTags(t *testing.T) {
	c := newTestClassifier(t)

	assert.Equal(t, "react", c.Taxonomy().Canonical("React.js"))
	assert.Equal(t, "kubernetes", c.Taxonomy().Canonical("K8s"))
	assert.Equal(t, "golang", c.Taxonomy().Canonical("golang"))
	// unknown names normalize but pass through
	assert.Equal(t, "cobol", c.Taxonomy().Canonical(" COBOL "))
}

func TestDomainsFor_DistinctDomains(t *testing.T) {
	c := newTestClassifier(t)

	domains := c.Taxonomy().DomainsFor([]string{"react", "kafka", "accounting"})

	assert.ElementsMatch(t, []string{"tech", "data", "finance"}, domains)
}
