package controllers

import (
	"context"
	"net/http"

	"github.com/kapehan/tindera-backend/api/responses"
	"github.com/kapehan/tindera-backend/pkg/config"
	"github.com/kapehan/tindera-backend/pkg/db"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tindera-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a ping.
// A nil dependency is treated as not wired and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	checks := []struct {
		name string
		dep  pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tindera-Env", cfg.App.Env)

		for _, check := range checks {
			if check.dep == nil {
				continue
			}
			if err := check.dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable").
						WithDetails(map[string]any{"dependency": check.name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
