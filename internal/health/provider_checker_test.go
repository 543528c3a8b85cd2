package health

import (
	"context"
	"fmt"
	"testing"

	"github.com/mattheweller/vibesana/internal/provider"
)

// stubClient is a provider.Client test double.
type stubClient struct {
	available bool
	healthErr error
}

func (s *stubClient) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Completion, error) {
	return &provider.Completion{}, nil
}

func (s *stubClient) IsAvailable() bool { return s.available }

func (s *stubClient) Health(ctx context.Context) error { return s.healthErr }

func TestProviderCheckerNoClient(t *testing.T) {
	checker := NewProviderChecker(nil)

	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", result.Status)
	}
}

func TestProviderCheckerUnavailable(t *testing.T) {
	checker := NewProviderChecker(&stubClient{available: false})

	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", result.Status)
	}
}

func TestProviderCheckerDegraded(t *testing.T) {
	checker := NewProviderChecker(&stubClient{
		available: true,
		healthErr: fmt.Errorf("connection refused"),
	})

	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("status = %s, want degraded", result.Status)
	}
	if result.Details["error"] == nil {
		t.Error("expected error detail")
	}
}

func TestProviderCheckerHealthy(t *testing.T) {
	checker := NewProviderChecker(&stubClient{available: true})

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("status = %s, want healthy", result.Status)
	}
	if checker.Name() != "openai-provider" {
		t.Errorf("unexpected checker name: %s", checker.Name())
	}
}
