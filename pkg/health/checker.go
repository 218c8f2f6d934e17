package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status    Status                 `json:"status"`
	Component string                 `json:"component"`
	Message   string                 `json:"message,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Duration  time.Duration          `json:"duration"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Checker is implemented by each component probe.
type Checker interface {
	Check(ctx context.Context) CheckResult
	Name() string
}

// Registry runs a set of component checkers and aggregates their results.
type Registry struct {
	checkers []Checker
	timeout  time.Duration
}

// NewRegistry creates a registry with an overall timeout for a full sweep.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Registry{timeout: timeout}
}

// Register adds a checker to the registry.
func (r *Registry) Register(checker Checker) {
	r.checkers = append(r.checkers, checker)
}

// Check runs all checks in parallel and returns the overall status.
// Any unhealthy component makes the whole service unhealthy; degraded
// components downgrade an otherwise healthy result.
func (r *Registry) Check(ctx context.Context) (Status, map[string]CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(map[string]CheckResult, len(r.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range r.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			result := c.Check(ctx)
			mu.Lock()
			results[c.Name()] = result
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	overall := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy, results
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall, results
}

// Response is the JSON body served by the health endpoint.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks"`
}

func newResult(component string, status Status, message string, err error) CheckResult {
	result := CheckResult{
		Component: component,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		result.Status = StatusUnhealthy
	}
	return result
}

// Healthy creates a healthy check result.
func Healthy(component, message string) CheckResult {
	return newResult(component, StatusHealthy, message, nil)
}

// Unhealthy creates an unhealthy check result.
func Unhealthy(component string, err error) CheckResult {
	return newResult(component, StatusUnhealthy, "", err)
}

// Degraded creates a degraded check result.
func Degraded(component, message string) CheckResult {
	return newResult(component, StatusDegraded, message, nil)
}

// WithMetadata attaches a metadata entry to the result.
func (r CheckResult) WithMetadata(key string, value interface{}) CheckResult {
	if r.Metadata == nil {
		r.Metadata = make(map[string]interface{})
	}
	r.Metadata[key] = value
	return r
}

// WithDuration records how long the check took.
func (r CheckResult) WithDuration(d time.Duration) CheckResult {
	r.Duration = d
	return r
}
