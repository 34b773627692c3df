package feature_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/feature"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestEvaluateDefaultValue(t *testing.T) {
	t.Parallel()

	def := &feature.FeatureDefinition{
		ID:           "plain-flag",
		DefaultValue: raw(`true`),
	}

	result := feature.Evaluate(def, feature.Attributes{"id": "u1"})
	assert.Equal(t, raw(`true`), result.Value)
	assert.Equal(t, feature.SourceDefaultValue, result.Source)
	assert.True(t, result.On)
}

func TestEvaluateForceRule(t *testing.T) {
	t.Parallel()

	def := &feature.FeatureDefinition{
		ID:           "banner",
		DefaultValue: raw(`"off"`),
		Rules: []feature.Rule{
			{
				ID:        "r1",
				Condition: feature.Condition{"country": "de"},
				Force:     raw(`"german-banner"`),
			},
			{
				ID:    "r2",
				Force: raw(`"fallback-banner"`),
			},
		},
	}

	t.Run("FirstMatchWins", func(t *testing.T) {
		t.Parallel()
		result := feature.Evaluate(def, feature.Attributes{"country": "de"})
		assert.Equal(t, "r1", result.RuleID)
		assert.Equal(t, raw(`"german-banner"`), result.Value)
		assert.Equal(t, feature.SourceForce, result.Source)
	})

	t.Run("UnconditionalRuleCatchesRest", func(t *testing.T) {
		t.Parallel()
		result := feature.Evaluate(def, feature.Attributes{"country": "us"})
		assert.Equal(t, "r2", result.RuleID)
		assert.Equal(t, raw(`"fallback-banner"`), result.Value)
	})
}

func TestEvaluateExperiment(t *testing.T) {
	t.Parallel()

	def := &feature.FeatureDefinition{
		ID:           "pricing-test",
		DefaultValue: raw(`"control"`),
		Rules: []feature.Rule{{
			ID:         "exp1",
			Key:        "pricing-test",
			Variations: []json.RawMessage{raw(`"control"`), raw(`"treatment"`)},
			Weights:    []float64{0.5, 0.5},
		}},
	}

	t.Run("Deterministic", func(t *testing.T) {
		t.Parallel()
		attrs := feature.Attributes{"id": "user-123"}
		first := feature.Evaluate(def, attrs)
		for range 10 {
			assert.Equal(t, first, feature.Evaluate(def, attrs))
		}
		assert.Equal(t, feature.SourceExperiment, first.Source)
		assert.True(t, first.InExperiment)
		assert.Equal(t, "pricing-test", first.ExperimentKey)
	})

	t.Run("BucketMatchesContract", func(t *testing.T) {
		t.Parallel()
		result := feature.Evaluate(def, feature.Attributes{"id": "user-123"})
		expected := feature.Bucket("pricing-test", "user-123")
		assert.Equal(t, expected, result.Bucket)
		if expected < 0.5 {
			assert.Equal(t, 0, result.VariationIndex)
		} else {
			assert.Equal(t, 1, result.VariationIndex)
		}
	})

	t.Run("MissingHashAttributeSkipsRule", func(t *testing.T) {
		t.Parallel()
		result := feature.Evaluate(def, feature.Attributes{"email": "a@b.c"})
		assert.Equal(t, feature.SourceDefaultValue, result.Source)
		assert.False(t, result.InExperiment)
	})

	t.Run("CustomHashAttribute", func(t *testing.T) {
		t.Parallel()
		custom := &feature.FeatureDefinition{
			ID:           "pricing-test",
			DefaultValue: raw(`"control"`),
			Rules: []feature.Rule{{
				Key:           "pricing-test",
				HashAttribute: "deviceId",
				Variations:    []json.RawMessage{raw(`"a"`), raw(`"b"`)},
			}},
		}
		result := feature.Evaluate(custom, feature.Attributes{"deviceId": "d-42"})
		assert.True(t, result.InExperiment)
		assert.Equal(t, feature.Bucket("pricing-test", "d-42"), result.Bucket)
	})
}

func TestEvaluateCoverage(t *testing.T) {
	t.Parallel()

	zero := 0.0
	def := &feature.FeatureDefinition{
		ID:           "dark-launch",
		DefaultValue: raw(`false`),
		Rules: []feature.Rule{{
			Key:        "dark-launch",
			Coverage:   &zero,
			Variations: []json.RawMessage{raw(`false`), raw(`true`)},
		}},
	}

	// Zero coverage leaves every user out of the experiment.
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		result := feature.Evaluate(def, feature.Attributes{"id": id})
		assert.Equal(t, feature.SourceDefaultValue, result.Source, "user %s", id)
	}
}

func TestEvaluateTrafficSplit(t *testing.T) {
	t.Parallel()

	def := &feature.FeatureDefinition{
		ID:           "split",
		DefaultValue: raw(`"none"`),
		Rules: []feature.Rule{{
			Key:        "split",
			Variations: []json.RawMessage{raw(`"a"`), raw(`"b"`)},
			Weights:    []float64{1.0, 0.0},
		}},
	}

	// With all traffic in the first slot every user lands on variation 0.
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		result := feature.Evaluate(def, feature.Attributes{"id": id})
		require.True(t, result.InExperiment, "user %s", id)
		assert.Equal(t, 0, result.VariationIndex, "user %s", id)
	}
}

func TestEvaluateMalformedWeightsFallBackToEqualSplit(t *testing.T) {
	t.Parallel()

	def := &feature.FeatureDefinition{
		ID:           "lopsided",
		DefaultValue: raw(`"none"`),
		Rules: []feature.Rule{{
			Key:        "lopsided",
			Variations: []json.RawMessage{raw(`"a"`), raw(`"b"`)},
			// Sums to 2.0; ignored in favor of an equal split.
			Weights: []float64{1.0, 1.0},
		}},
	}

	result := feature.Evaluate(def, feature.Attributes{"id": "user-1"})
	require.True(t, result.InExperiment)
	if result.Bucket < 0.5 {
		assert.Equal(t, 0, result.VariationIndex)
	} else {
		assert.Equal(t, 1, result.VariationIndex)
	}
}

func TestEvaluateTruthiness(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		on    bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`0`, false},
		{`1`, true},
		{`""`, false},
		{`"off"`, true},
		{`{}`, true},
	}

	for _, tc := range cases {
		def := &feature.FeatureDefinition{ID: "f", DefaultValue: raw(tc.value)}
		result := feature.Evaluate(def, feature.Attributes{})
		assert.Equal(t, tc.on, result.On, "value %s", tc.value)
	}
}

func TestBucketStability(t *testing.T) {
	t.Parallel()

	// Pinned values: the bucketing hash is a cross-SDK contract and any
	// change here breaks assignment stability for users in the field.
	assert.Equal(t, feature.Bucket("exp-key", "user-1"), feature.Bucket("exp-key", "user-1"))
	assert.NotEqual(t, feature.Bucket("exp-key", "user-1"), feature.Bucket("other-key", "user-1"))

	b := feature.Bucket("exp-key", "user-1")
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 1.0)
	// mod-1000 quantization
	assert.Equal(t, b, float64(int(b*1000))/1000)
}

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()

	t.Run("EmptyID", func(t *testing.T) {
		t.Parallel()
		def := &feature.FeatureDefinition{DefaultValue: raw(`true`)}
		assert.ErrorIs(t, def.Validate(), feature.ErrInvalidDefinition)
	})

	t.Run("ForceAndVariations", func(t *testing.T) {
		t.Parallel()
		def := &feature.FeatureDefinition{
			ID:           "f",
			DefaultValue: raw(`true`),
			Rules: []feature.Rule{{
				Force:      raw(`true`),
				Variations: []json.RawMessage{raw(`1`)},
			}},
		}
		assert.ErrorIs(t, def.Validate(), feature.ErrInvalidDefinition)
	})

	t.Run("WeightsMismatch", func(t *testing.T) {
		t.Parallel()
		def := &feature.FeatureDefinition{
			ID:           "f",
			DefaultValue: raw(`true`),
			Rules: []feature.Rule{{
				Variations: []json.RawMessage{raw(`1`), raw(`2`)},
				Weights:    []float64{1.0},
			}},
		}
		assert.ErrorIs(t, def.Validate(), feature.ErrInvalidDefinition)
	})

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		def := &feature.FeatureDefinition{
			ID:           "f",
			DefaultValue: raw(`true`),
			Rules: []feature.Rule{{
				Variations: []json.RawMessage{raw(`1`), raw(`2`)},
				Weights:    []float64{0.5, 0.5},
			}},
		}
		assert.NoError(t, def.Validate())
	})
}

func TestInProjects(t *testing.T) {
	t.Parallel()

	scoped := &feature.FeatureDefinition{ID: "f1", Projects: []string{"p1"}}
	global := &feature.FeatureDefinition{ID: "f2"}

	assert.True(t, scoped.InProjects([]string{"p1", "p2"}))
	assert.False(t, scoped.InProjects([]string{"p2"}))
	assert.True(t, scoped.InProjects(nil)) // unscoped connection sees everything
	assert.True(t, global.InProjects([]string{"p2"}))
}
