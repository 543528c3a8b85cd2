package health

import "context"

// Pinger is the slice of the task store the checker needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker checks the task database connection.
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker creates a new store health checker.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name returns the name of this health check.
func (c *StoreChecker) Name() string {
	return "task-store"
}

// Check verifies the database connection is alive.
func (c *StoreChecker) Check(ctx context.Context) *Result {
	if c.store == nil {
		return Unhealthy("task store not configured")
	}

	if err := c.store.Ping(ctx); err != nil {
		return Unhealthy("task store ping failed").
			WithDetail("error", err.Error())
	}

	return Healthy("task store reachable")
}
