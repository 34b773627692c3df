package facttable

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/flagkit/pkg/jobs"
)

// RefreshTaskName is the registered name of the column refresh task.
const RefreshTaskName = "refreshFactTableColumns"

// RefreshPayload is the column refresh task payload.
type RefreshPayload struct {
	Organization string `json:"organization"`
	FactTableID  string `json:"factTableId"`
}

// NewRefreshHandler builds the background task that refreshes a fact
// table's column metadata.
//
// Query failures are recorded on the fact table as ColumnsError rather than
// failing the task: a broken SQL statement is operator data, not a transient
// condition a retry would fix. A missing fact table or an incomplete payload
// completes without error since there is nothing left to refresh.
func NewRefreshHandler(store Store, runner QueryRunner, opts ...RefreshOption) jobs.Handler {
	cfg := refreshConfig{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return jobs.NewNamedTaskHandler(RefreshTaskName, func(ctx context.Context, p RefreshPayload) error {
		if p.Organization == "" || p.FactTableID == "" {
			return nil
		}

		ft, err := store.Get(ctx, p.Organization, p.FactTableID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}

		columns, refreshErr := RefreshColumns(ctx, runner, ft, cfg.now)
		if refreshErr != nil {
			cfg.logger.WarnContext(ctx, "fact table column refresh failed",
				slog.String("organization", p.Organization),
				slog.String("fact_table_id", p.FactTableID),
				slog.Any("error", refreshErr))
			return store.UpdateColumns(ctx, p.Organization, p.FactTableID, ft.Columns, refreshErr.Error())
		}

		return store.UpdateColumns(ctx, p.Organization, p.FactTableID, columns, "")
	})
}

type refreshConfig struct {
	logger *slog.Logger
	now    func() time.Time
}

// RefreshOption configures NewRefreshHandler.
type RefreshOption func(*refreshConfig)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RefreshOption {
	return func(c *refreshConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source, used by tests to pin timestamps.
func WithClock(now func() time.Time) RefreshOption {
	return func(c *refreshConfig) {
		if now != nil {
			c.now = now
		}
	}
}
