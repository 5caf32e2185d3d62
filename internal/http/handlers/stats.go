package handlers

import (
	"net/http"

	"engrafo/internal/domain"
	"engrafo/internal/sqlinline"
)

// AdminStats feeds the dashboard header: one query, seven counters.
func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	var (
		documents      int64
		totalViews     int64
		donations      int64
		completed      int64
		completedCents int64
		unreadTickets  int64
		activeTickets  int64
	)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QAdminStats)
	if err := row.Scan(&documents, &totalViews, &donations, &completed,
		&completedCents, &unreadTickets, &activeTickets); err != nil {
		a.Logger.Error().Err(err).Msg("admin stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"documents":           documents,
		"total_views":         totalViews,
		"donations":           donations,
		"donations_completed": completed,
		"donations_total":     domain.FormatAmount(completedCents),
		"tickets_unread":      unreadTickets,
		"tickets_active":      activeTickets,
	})
}
