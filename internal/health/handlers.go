package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes the two stores the API cannot serve without: Postgres for
// catalog and settings rows, Redis for the rate limiter.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler serves the liveness and readiness endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live answers as long as the process is up; it probes nothing.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready probes each dependency and reports per-dependency status, so an
// operator reading the 503 body sees which store is down. A failed probe
// reports its error text in place of "ok".
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}

	probes := []struct {
		name    string
		timeout time.Duration
		ping    func(context.Context, time.Duration) error
	}{
		{"db", orDefault(h.DBTimeout, 500*time.Millisecond), h.Checker.PingDB},
		{"redis", orDefault(h.RedisTimeout, 300*time.Millisecond), h.Checker.PingRedis},
	}

	status := make(map[string]string, len(probes))
	ready := true
	for _, p := range probes {
		if err := p.ping(r.Context(), p.timeout); err != nil {
			status[p.name] = err.Error()
			ready = false
			continue
		}
		status[p.name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
