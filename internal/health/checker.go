// Package health reports whether the breakdown service can serve
// traffic. A Checker probes one dependency of the service (the
// language-model provider, the tasks database) and the ProbeManager
// aggregates those probes into Kubernetes-style liveness, readiness
// and startup answers.
package health

import (
	"context"
	"time"
)

// Checker probes a single service dependency.
type Checker interface {
	// Name identifies the dependency, lowercase with hyphens
	// ("openai-provider", "task-store").
	Name() string

	// Check probes the dependency. It must respect the context
	// deadline; readiness gives each check a bounded slice of time.
	Check(ctx context.Context) *Result
}

// Status grades a dependency or the service as a whole.
type Status string

const (
	// StatusHealthy means the dependency is fully usable.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the dependency answered but not cleanly.
	// Requests may still succeed, possibly with reduced quality.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means the dependency cannot serve requests.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is one dependency's probe outcome.
type Result struct {
	// Status grades the dependency.
	Status Status

	// Message says what the probe observed, for humans.
	Message string

	// Details carries structured context: error text, suggestions,
	// endpoint addresses.
	Details map[string]any

	// Latency is how long the probe took. Filled in by the
	// ProbeManager when the checker leaves it zero.
	Latency time.Duration
}

// WithDetail attaches one detail and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// Healthy builds a healthy result.
func Healthy(message string) *Result {
	return &Result{Status: StatusHealthy, Message: message, Details: map[string]any{}}
}

// Degraded builds a degraded result.
func Degraded(message string) *Result {
	return &Result{Status: StatusDegraded, Message: message, Details: map[string]any{}}
}

// Unhealthy builds an unhealthy result.
func Unhealthy(message string) *Result {
	return &Result{Status: StatusUnhealthy, Message: message, Details: map[string]any{}}
}
