package metrics

import (
	"fmt"

	"github.com/dan404cipher/alumini-accel-sub000/internal/models"
)

// Source produces a user's current value for a task's metric. Implementations
// must be read-only and monotonic for cumulative metrics: with no new domain
// activity, repeated calls return the same value.
type Source interface {
	GetMetric(userID string, action models.ActionType, metric models.MetricKind, descriptor string, tenantID string) (float64, error)
}

// SourceError isolates a single broken metric source: one task failing to
// resolve must not abort evaluation of unrelated tasks.
type SourceError struct {
	Action models.ActionType
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("metric source %s: %v", e.Action, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// computer is one variant of the closed action-type set. Adding a new action
// type means adding a variant, not growing a switch.
type computer interface {
	compute(userID string, metric models.MetricKind, descriptor string, tenantID string) (float64, error)
}

// Registry dispatches metric lookups to the variant registered for each
// action type.
type Registry struct {
	sources map[models.ActionType]computer
}

func (r *Registry) GetMetric(userID string, action models.ActionType, metric models.MetricKind, descriptor string, tenantID string) (float64, error) {
	src, ok := r.sources[action]
	if !ok {
		return 0, &SourceError{Action: action, Err: fmt.Errorf("no source registered")}
	}
	value, err := src.compute(userID, metric, descriptor, tenantID)
	if err != nil {
		return 0, &SourceError{Action: action, Err: err}
	}
	return value, nil
}
