package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestEmbed_Deterministic(t *testing.T) {
	p := newProvider(t)

	a, err := p.Embed("senior react developer with typescript")
	require.NoError(t, err)
	b, err := p.Embed("senior react developer with typescript")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_FixedDimensionAndUnitLength(t *testing.T) {
	p := newProvider(t)

	vec, err := p.Embed("distributed systems engineer")
	require.NoError(t, err)

	require.Len(t, vec, Dimension)
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-4)
}

func TestEmbed_EmptyTextFails(t *testing.T) {
	p := newProvider(t)

	_, err := p.Embed("")

	var embedErr *EmbedError
	assert.ErrorAs(t, err, &embedErr)
}

func TestEmbed_SimilarTextsScoreHigherThanUnrelated(t *testing.T) {
	p := newProvider(t)

	cv, err := p.Embed("frontend developer building react applications")
	require.NoError(t, err)
	related, err := p.Embed("react frontend developer position")
	require.NoError(t, err)
	unrelated, err := p.Embed("pastry chef for artisanal bakery")
	require.NoError(t, err)

	assert.Greater(t, Cosine(cv, related), Cosine(cv, unrelated))
}

func TestEmbedBatch_PerItemIsolation(t *testing.T) {
	p := newProvider(t)

	results := p.EmbedBatch(context.Background(), []string{
		"golang backend engineer",
		"", // fails on its own, must not poison the batch
		"data scientist python",
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Len(t, results[0].Vector, Dimension)
	assert.Len(t, results[2].Vector, Dimension)
}

func TestCosine_InvalidInputs(t *testing.T) {
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestCosine_IdenticalVectors(t *testing.T) {
	p := newProvider(t)
	vec, err := p.Embed("site reliability engineer")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, Cosine(vec, vec), 1e-6)
}
