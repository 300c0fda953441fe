package httptransport

import (
	"encoding/json"
	"net/http"

	"gipf-arena/internal/app/games"
	"gipf-arena/internal/store"

	"github.com/rs/zerolog/log"
)

type AdminHandlers struct {
	repo  store.Repository
	games *games.Service
}

func NewAdminHandlers(repo store.Repository, svc *games.Service) *AdminHandlers {
	return &AdminHandlers{repo: repo, games: svc}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := h.repo.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Games() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.games.List(r.Context(), limit, offset)
		if err != nil {
			log.Error().Err(err).Msg("admin_list_games_failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
