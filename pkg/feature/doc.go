// Package feature defines the feature-definition data model and the pure
// evaluation interpreter that resolves a definition against one user's
// attributes.
//
// A FeatureDefinition carries a default value plus an ordered list of
// targeting rules. Each rule has an optional Condition (a Mongo-style
// predicate over the attribute map) and either forces a value or references
// an experiment: a set of variations with a traffic split. Rules are
// first-match-wins.
//
// # Evaluation
//
//	def := &feature.FeatureDefinition{
//		ID:           "checkout-redesign",
//		DefaultValue: json.RawMessage(`false`),
//		Rules: []feature.Rule{{
//			Condition: feature.Condition{"country": "de"},
//			Force:     json.RawMessage(`true`),
//		}},
//	}
//
//	result := feature.Evaluate(def, feature.Attributes{"country": "de"})
//	// result.Value == true, result.Source == feature.SourceForce
//
// Evaluate is a pure function: identical inputs always produce identical
// results. That property is what allows preview tooling to promise that
// re-running an evaluation shows the same outcome until the definition
// changes, and it is what golden-file regression tests pin down.
//
// # Experiment bucketing
//
// Experiment assignment hashes the designated attribute value together with
// the experiment seed using Bucket (FNV-1a 32-bit, mod 1000, scaled to
// [0, 1)) and maps the bucket into cumulative traffic-split ranges in
// variation declaration order. The hash scheme is a compatibility contract
// with SDKs in the field; see Bucket for details.
//
// # Conditions
//
// Conditions support implicit equality, $eq/$ne/$lt/$lte/$gt/$gte, $in/$nin,
// $exists, $regex, $elemMatch, $all, $size, $type, $not, the combinators
// $and/$or/$nor, and the semver targeting operators $veq/$vne/$vlt/$vlte/
// $vgt/$vgte. Malformed operators or operands fail the individual check
// instead of erroring; evaluation is total.
package feature
