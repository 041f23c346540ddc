package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dkravchenko/polyclinic-backend/api/responses"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Polyclinic-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status and returns 503 when any
// dependency fails its ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, storageP pinger) http.HandlerFunc {
	deps := []struct {
		name string
		p    pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"storage", storageP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Polyclinic-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		ready := true
		for _, dep := range deps {
			if dep.p == nil {
				checks[dep.name] = "skipped"
				continue
			}
			if err := dep.p.Ping(ctx); err != nil {
				ready = false
				checks[dep.name] = "down"
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", dep.name), "health.check_failed", err)
				}
				continue
			}
			checks[dep.name] = "up"
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, code, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
