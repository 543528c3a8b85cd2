package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattheweller/vibesana/internal/log"
)

// defaultCheckTimeout bounds each dependency probe during readiness.
const defaultCheckTimeout = 5 * time.Second

// ProbeManager answers the service's probe endpoints. Liveness only
// says the process responds, startup only that wiring finished;
// readiness additionally probes the registered dependencies (provider,
// task store) and fails while the server is draining, which is what
// takes a pod out of rotation during a rolling update.
type ProbeManager struct {
	mu           sync.RWMutex
	checkers     []Checker
	checkTimeout time.Duration

	startTime   time.Time
	initialized atomic.Bool
	inShutdown  atomic.Bool
	version     string
}

// NewProbeManager creates a ProbeManager reporting the given service
// version.
func NewProbeManager(version string) *ProbeManager {
	return &ProbeManager{
		checkTimeout: defaultCheckTimeout,
		startTime:    time.Now(),
		version:      version,
	}
}

// AddChecker registers a dependency probe for readiness.
func (pm *ProbeManager) AddChecker(checker Checker) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.checkers = append(pm.checkers, checker)
}

// MarkInitialized flips the startup probe to passing.
func (pm *ProbeManager) MarkInitialized() {
	pm.initialized.Store(true)
}

// MarkShutdown flips readiness to failing so the pod stops receiving
// traffic while connections drain.
func (pm *ProbeManager) MarkShutdown() {
	pm.inShutdown.Store(true)
}

// IsInitialized reports whether startup has completed.
func (pm *ProbeManager) IsInitialized() bool {
	return pm.initialized.Load()
}

// IsShuttingDown reports whether the service is draining.
func (pm *ProbeManager) IsShuttingDown() bool {
	return pm.inShutdown.Load()
}

// Uptime reports how long the service has been running.
func (pm *ProbeManager) Uptime() time.Duration {
	return time.Since(pm.startTime)
}

// Version reports the service version probes were created with.
func (pm *ProbeManager) Version() string {
	return pm.version
}

// ProbeResult is the JSON body of a probe endpoint.
type ProbeResult struct {
	Status    Status             `json:"status"`
	Version   string             `json:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func (pm *ProbeManager) newProbeResult(status Status, checks map[string]*Result) *ProbeResult {
	if checks == nil {
		checks = map[string]*Result{}
	}
	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    checks,
		Timestamp: time.Now(),
	}
}

// CheckLiveness answers the liveness probe. It never touches
// dependencies: a broken provider must not get the container
// restarted. During shutdown the process is alive but winding down,
// reported as degraded.
func (pm *ProbeManager) CheckLiveness(ctx context.Context) *ProbeResult {
	status := StatusHealthy
	if pm.IsShuttingDown() {
		status = StatusDegraded
	}
	return pm.newProbeResult(status, nil)
}

// CheckReadiness answers the readiness probe. A draining service is
// unhealthy without probing anything; otherwise every registered
// dependency is probed and the worst grade wins.
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.newProbeResult(StatusUnhealthy, nil)
	}

	checks := pm.runChecks(ctx)
	return pm.newProbeResult(aggregate(checks), checks)
}

// CheckStartup answers the startup probe: unhealthy until the serve
// command finishes wiring and calls MarkInitialized.
func (pm *ProbeManager) CheckStartup(ctx context.Context) *ProbeResult {
	status := StatusUnhealthy
	if pm.IsInitialized() {
		status = StatusHealthy
	}
	return pm.newProbeResult(status, nil)
}

// runChecks probes every dependency in parallel, each under its own
// timeout so one stuck dependency cannot stall the whole probe.
func (pm *ProbeManager) runChecks(ctx context.Context) map[string]*Result {
	pm.mu.RLock()
	checkers := make([]Checker, len(pm.checkers))
	copy(checkers, pm.checkers)
	timeout := pm.checkTimeout
	pm.mu.RUnlock()

	results := make(map[string]*Result, len(checkers))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			result := c.Check(checkCtx)
			if result.Latency == 0 {
				result.Latency = time.Since(start)
			}

			if result.Status != StatusHealthy {
				log.DefaultLogger().Warn("dependency check failed",
					"check", c.Name(),
					"status", result.Status.String(),
					"message", result.Message,
				)
			}

			resultsMu.Lock()
			results[c.Name()] = result
			resultsMu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

// aggregate grades the service from its dependency results: any
// unhealthy dependency makes the service unhealthy, otherwise any
// degraded one makes it degraded.
func aggregate(results map[string]*Result) Status {
	status := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
