// Package jobs defines the contract between background task producers and
// the scheduler that runs them.
//
// A Handler couples a stable task name with a function that processes a raw
// JSON payload. NewTaskHandler lifts a strongly typed function into that
// shape, deriving the task name from the payload type so enqueuers and
// workers agree on it without sharing constants:
//
//	type RefreshPayload struct {
//		Organization string `json:"organization"`
//		FactTableID  string `json:"factTableId"`
//	}
//
//	handler := jobs.NewTaskHandler(func(ctx context.Context, p RefreshPayload) error {
//		return refresh(ctx, p.Organization, p.FactTableID)
//	})
//
// The package deliberately stops at the contract: queue storage, scheduling,
// and retry policy belong to the hosting application.
package jobs
