package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewRouter wires the booking routes plus a health endpoint backed by a
// database ping.
func NewRouter(h *BookingsHandler, ping func(ctx context.Context) error, log *slog.Logger) *httprouter.Router {
	if log == nil {
		log = slog.Default()
	}
	r := httprouter.New()
	h.Register(r)

	r.GET("/healthz", func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		if ping != nil {
			if err := ping(req.Context()); err != nil {
				log.Warn("health check failed", slog.Any("err", err))
				writeError(w, log, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable", nil)
				return
			}
		}
		writeJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
