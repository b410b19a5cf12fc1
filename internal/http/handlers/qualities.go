package handlers

import (
	"net/http"

	"personastudio/internal/domain"
)

// VideoQualities serves the static tier table.
func (a *App) VideoQualities(w http.ResponseWriter, r *http.Request) {
	items := make([]map[string]any, 0, len(domain.VideoQualities))
	for _, q := range domain.VideoQualities {
		items = append(items, map[string]any{
			"id":          q.ID,
			"label":       q.Label,
			"credit_cost": q.CreditCost,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"qualities": items})
}
