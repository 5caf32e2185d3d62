package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	if a.PingDB != nil {
		if err := a.PingDB(r.Context()); err != nil {
			a.Logger.Error().Err(err).Msg("readiness probe failed")
			a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ready"})
}
