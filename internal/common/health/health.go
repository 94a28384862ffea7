// Package health serves liveness and readiness probes for the API.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Check represents a single health check
type Check struct {
	Name   string         `json:"name"`
	Status Status         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
}

// HealthResponse represents the health endpoint response
type HealthResponse struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks,omitempty"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func(ctx context.Context) Check

// Checker manages health checks for the application
type Checker struct {
	mu              sync.RWMutex
	livenessChecks  []CheckFunc
	readinessChecks []CheckFunc

	// timeout bounds every individual check
	timeout time.Duration
}

// NewChecker creates a new health checker
func NewChecker() *Checker {
	return &Checker{
		livenessChecks:  make([]CheckFunc, 0),
		readinessChecks: make([]CheckFunc, 0),
		timeout:         3 * time.Second,
	}
}

// AddLivenessCheck adds a liveness check
func (c *Checker) AddLivenessCheck(check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.livenessChecks = append(c.livenessChecks, check)
}

// AddReadinessCheck adds a readiness check
func (c *Checker) AddReadinessCheck(check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readinessChecks = append(c.readinessChecks, check)
}

// runChecks runs a set of health checks and returns the aggregated response
func (c *Checker) runChecks(ctx context.Context, checks []CheckFunc) HealthResponse {
	response := HealthResponse{
		Status: StatusUp,
		Checks: make([]Check, 0, len(checks)),
	}

	for _, checkFunc := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		check := checkFunc(checkCtx)
		cancel()

		response.Checks = append(response.Checks, check)
		if check.Status == StatusDown {
			response.Status = StatusDown
		}
	}

	return response
}

func (c *Checker) snapshot(liveness, readiness bool) []CheckFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []CheckFunc
	if liveness {
		out = append(out, c.livenessChecks...)
	}
	if readiness {
		out = append(out, c.readinessChecks...)
	}
	return out
}

// GetLiveness returns the liveness status
func (c *Checker) GetLiveness(ctx context.Context) HealthResponse {
	return c.runChecks(ctx, c.snapshot(true, false))
}

// GetReadiness returns the readiness status
func (c *Checker) GetReadiness(ctx context.Context) HealthResponse {
	return c.runChecks(ctx, c.snapshot(false, true))
}

// GetHealth returns the combined health status
func (c *Checker) GetHealth(ctx context.Context) HealthResponse {
	return c.runChecks(ctx, c.snapshot(true, true))
}

// HandleHealth handles the /q/health endpoint
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	c.writeResponse(w, c.GetHealth(r.Context()))
}

// HandleLive handles the /q/health/live endpoint
func (c *Checker) HandleLive(w http.ResponseWriter, r *http.Request) {
	c.writeResponse(w, c.GetLiveness(r.Context()))
}

// HandleReady handles the /q/health/ready endpoint
func (c *Checker) HandleReady(w http.ResponseWriter, r *http.Request) {
	c.writeResponse(w, c.GetReadiness(r.Context()))
}

func (c *Checker) writeResponse(w http.ResponseWriter, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")

	if response.Status == StatusDown {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

// ErrorCheck reports DOWN with the error text when fn fails.
func ErrorCheck(name string, fn func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		if err := fn(ctx); err != nil {
			return Check{
				Name:   name,
				Status: StatusDown,
				Data:   map[string]any{"error": err.Error()},
			}
		}
		return Check{Name: name, Status: StatusUp}
	}
}

// MongoDBCheck creates a health check for MongoDB
func MongoDBCheck(ping func(ctx context.Context) error) CheckFunc {
	return ErrorCheck("MongoDB", ping)
}

// RedisCheck creates a health check for Redis
func RedisCheck(ping func(ctx context.Context) error) CheckFunc {
	return ErrorCheck("Redis", ping)
}

// NATSCheck creates a health check for NATS
func NATSCheck(isConnected func() bool) CheckFunc {
	return func(context.Context) Check {
		if !isConnected() {
			return Check{Name: "NATS", Status: StatusDown}
		}
		return Check{Name: "NATS", Status: StatusUp}
	}
}

// ReconcilerCheck reports the approval reconciler. A follower instance is
// UP; only the leader scans.
func ReconcilerCheck(health func() error, isLeader func() bool) CheckFunc {
	return func(context.Context) Check {
		leader := isLeader()
		if err := health(); err != nil {
			return Check{
				Name:   "ApprovalReconciler",
				Status: StatusDown,
				Data:   map[string]any{"leader": leader, "error": err.Error()},
			}
		}
		return Check{
			Name:   "ApprovalReconciler",
			Status: StatusUp,
			Data:   map[string]any{"leader": leader},
		}
	}
}
