package health

import (
	"context"
	"fmt"
	"testing"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error { return s.err }

func TestStoreCheckerHealthy(t *testing.T) {
	checker := NewStoreChecker(&stubPinger{})

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("status = %s, want healthy", result.Status)
	}
	if checker.Name() != "task-store" {
		t.Errorf("unexpected checker name: %s", checker.Name())
	}
}

func TestStoreCheckerPingFails(t *testing.T) {
	checker := NewStoreChecker(&stubPinger{err: fmt.Errorf("database is locked")})

	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", result.Status)
	}
}

func TestStoreCheckerNilStore(t *testing.T) {
	checker := NewStoreChecker(nil)

	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", result.Status)
	}
}
