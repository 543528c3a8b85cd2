package health

import (
	"context"

	"github.com/mattheweller/vibesana/internal/provider"
)

// ProviderChecker checks the language-model provider the breakdown
// pipeline depends on.
type ProviderChecker struct {
	client provider.Client
}

// NewProviderChecker creates a new provider health checker.
func NewProviderChecker(client provider.Client) *ProviderChecker {
	return &ProviderChecker{client: client}
}

// Name returns the name of this health check.
func (c *ProviderChecker) Name() string {
	return "openai-provider"
}

// Check verifies that the provider is configured and reachable.
// Returns:
//   - Healthy if the provider is available and responding
//   - Unhealthy if no client is configured (missing API key)
//   - Degraded if the client is configured but the connectivity probe fails;
//     breakdown requests may still succeed if the failure was transient
func (c *ProviderChecker) Check(ctx context.Context) *Result {
	if c.client == nil || !c.client.IsAvailable() {
		return Unhealthy("language-model provider not configured").
			WithDetail("suggestion", "Set the OPENAI_API_KEY environment variable")
	}

	if err := c.client.Health(ctx); err != nil {
		return Degraded("provider connectivity check failed").
			WithDetail("error", err.Error())
	}

	return Healthy("provider configured and reachable")
}
