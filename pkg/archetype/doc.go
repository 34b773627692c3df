// Package archetype manages synthetic users for previewing feature flag
// behavior.
//
// An archetype is a named JSON attribute document standing in for a real
// user. Operators create archetypes for the personas they care about
// ("free-tier mobile user", "enterprise admin on Safari") and then preview
// how a feature definition resolves for each of them before shipping a
// change.
//
// # Usage
//
//	store := archetype.NewMemoryStore()
//	svc := archetype.NewService(store, entitlements)
//
//	_, err := svc.Create(ctx, "org_1", &archetype.Archetype{
//		Name:       "Free-tier mobile",
//		Attributes: `{"id":"u1","plan":"free","device":"mobile"}`,
//	})
//
//	results, err := svc.EvaluateFeature(ctx, "org_1", def, 0)
//	for id, res := range results {
//		fmt.Println(id, res.Source, string(res.Value))
//	}
//
// # Evaluation semantics
//
// EvaluateFeature runs the pure evaluator from the feature package against
// every archetype in the organization, bounded to a fixed number of
// concurrent evaluations (DefaultEvalConcurrency unless overridden). An
// archetype whose attribute document fails to parse is skipped and logged;
// the rest of the batch still produces results.
//
// # Entitlements
//
// All management operations and preview evaluation are gated behind the
// "archetypes" premium entitlement and return ErrPremiumRequired when the
// organization's plan lacks it.
package archetype
