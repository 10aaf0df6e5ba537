package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// ProviderHealthChecker reports whether the AI provider is wired. It does
// not call the provider; a probe would spend quota.
type ProviderHealthChecker struct {
	Provider   string
	Configured bool
}

func (p ProviderHealthChecker) Check(context.Context) error {
	if !p.Configured {
		return errors.New(p.Provider + " provider not configured")
	}
	return nil
}

const checkTimeout = 2 * time.Second

var startedAt = time.Now()

type readiness struct {
	Ready  bool                   `json:"ready"`
	Uptime string                 `json:"uptime"`
	Checks map[string]checkResult `json:"checks"`
}

type checkResult struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// HealthHandler answers readiness: 200 when every checker passes, 503
// otherwise. Each checker gets its own deadline.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := readiness{
			Ready:  true,
			Uptime: time.Since(startedAt).Round(time.Second).String(),
			Checks: make(map[string]checkResult, len(checkers)),
		}
		for name, c := range checkers {
			rep.Checks[name] = runCheck(r.Context(), c)
			if !rep.Checks[name].OK {
				rep.Ready = false
			}
		}

		status := http.StatusOK
		if !rep.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(rep)
	}
}

func runCheck(ctx context.Context, c HealthChecker) checkResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	start := time.Now()
	err := c.Check(ctx)
	res := checkResult{OK: err == nil, Duration: time.Since(start).String()}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
