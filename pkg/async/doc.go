// Package async provides small concurrency primitives: futures for one-off
// background computations and bounded fan-out over batches of independent
// tasks.
//
// # Futures
//
//	future := async.Run(ctx, req, func(ctx context.Context, r Request) (Report, error) {
//		return buildReport(ctx, r)
//	})
//	report, err := future.Await()
//
// # Bounded fan-out
//
// Chunked and Map run many independent tasks with a fixed concurrency
// ceiling. They exist for batch work such as evaluating one feature across
// many archetypes: at most N evaluations in flight, every task started
// exactly once, and a single failure collected rather than allowed to abort
// the batch.
//
//	results, err := async.Map(ctx, 5, archetypes, evaluateOne)
//	if err != nil {
//		// only possible error is a non-positive limit
//	}
//	for _, r := range results {
//		if r.Err != nil {
//			continue // skip failed items, keep the rest
//		}
//		use(r.Value)
//	}
//
// Neither primitive cancels in-flight work: tasks are expected to be pure and
// short-lived, and callers impose their own request-level timeout.
package async
