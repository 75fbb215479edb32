package app

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"
	"github.com/ton-connect/timeserver/internal"
)

const (
	ntpUnknown int64 = iota
	ntpReachable
	ntpUnreachable
)

// HealthChecker interface for NTP reachability checking
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthManager tracks whether the default NTP server answers.
// The time tools keep working either way, an unreachable server only
// degrades the reported status.
type HealthManager struct {
	ntp        int64 // Use atomic for thread-safe access
	retries    uint64
	retryDelay time.Duration
}

// NewHealthManager creates a new health manager
func NewHealthManager() *HealthManager {
	return &HealthManager{
		ntp:        ntpUnknown,
		retries:    2,
		retryDelay: time.Second,
	}
}

// UpdateHealthStatus runs the checker, retrying a few times before marking
// it unreachable, and updates metrics
func (h *HealthManager) UpdateHealthStatus(ctx context.Context, checker HealthChecker) {
	backoff := retry.WithMaxRetries(h.retries, retry.NewConstant(h.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := checker.HealthCheck(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	status := ntpReachable
	if err != nil {
		status = ntpUnreachable
		log.WithError(err).Warn("default NTP server is unreachable")
	}

	previous := atomic.SwapInt64(&h.ntp, status)
	if previous != status && status == ntpReachable {
		log.Info("default NTP server is reachable")
	}
	if status == ntpReachable {
		NTPReachableMetric.Set(1)
	} else {
		NTPReachableMetric.Set(0)
	}
}

// StartHealthMonitoring runs the checker every interval until ctx is done
func (h *HealthManager) StartHealthMonitoring(ctx context.Context, checker HealthChecker, interval time.Duration) {
	// Initial health check
	h.UpdateHealthStatus(ctx, checker)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.UpdateHealthStatus(ctx, checker)
		}
	}
}

type healthResponse struct {
	Status string `json:"status"`
	NTP    string `json:"ntp"`
}

func (h *HealthManager) status() healthResponse {
	switch atomic.LoadInt64(&h.ntp) {
	case ntpReachable:
		return healthResponse{Status: "ok", NTP: "reachable"}
	case ntpUnreachable:
		return healthResponse{Status: "degraded", NTP: "unreachable"}
	default:
		return healthResponse{Status: "ok", NTP: "unknown"}
	}
}

// HealthHandler returns HTTP handler for health endpoints. The server keeps
// answering 200 while NTP is unreachable since the local clock tool still works.
func (h *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

// VersionHandler returns HTTP handler for version endpoint
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": internal.TimeserverVersionRevision})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		log.Errorf("response marshal error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Build-Commit", internal.TimeserverVersionRevision)
	w.WriteHeader(code)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Errorf("response write error: %v", err)
	}
}
