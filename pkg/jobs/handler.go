package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// Handler processes one background task. Implementations are registered
	// with whatever scheduler the surrounding application runs; this package
	// only fixes the contract.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	// TaskHandlerFunc is the typed function a Handler wraps.
	TaskHandlerFunc[T any] func(ctx context.Context, payload T) error
)

// NewTaskHandler wraps a typed function into a Handler. The task name is
// derived from the payload type, so one payload type maps to one handler.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:    qualifiedStructName(payload),
		handler: handler,
	}
}

// NewNamedTaskHandler wraps a typed function under an explicit task name.
func NewNamedTaskHandler[T any](name string, handler TaskHandlerFunc[T]) Handler {
	return &taskHandler[T]{
		name:    name,
		handler: handler,
	}
}

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string {
	return h.name
}

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return h.handler(ctx, t)
}

func qualifiedStructName(v any) string {
	s := fmt.Sprintf("%T", v)
	s = strings.TrimLeft(s, "*")

	return s
}
