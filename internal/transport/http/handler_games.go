package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gipf-arena/internal/app/games"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type GameHandlers struct {
	games *games.Service
}

func NewGameHandlers(svc *games.Service) *GameHandlers {
	return &GameHandlers{games: svc}
}

func (h *GameHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricGameCreateTotal.Add(1)
		var body games.CreateGameRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricGameCreateErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.games.Create(r.Context(), body)
		if err != nil {
			metricGameCreateErrors.Add(1)
			switch {
			case errors.Is(err, games.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			case errors.Is(err, games.ErrUnknownIdentity):
				WriteHTTPError(w, http.StatusNotFound, "unknown_identity")
			default:
				log.Error().Err(err).Msg("create_game_failed")
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *GameHandlers) Actions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			replayQueryLastMS.Set(time.Since(start).Milliseconds())
		}()
		replayQueryTotal.Add(1)

		gameID, err := strconv.ParseInt(chi.URLParam(r, "game_id"), 10, 64)
		if err != nil || gameID < 1 {
			replayQueryErrorsTotal.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		views, err := h.games.Replay(r.Context(), gameID, r.URL.Query().Get("token"))
		if err != nil {
			replayQueryErrorsTotal.Add(1)
			switch {
			case errors.Is(err, games.ErrGameNotFound):
				WriteHTTPError(w, http.StatusNotFound, "game_not_found")
			case errors.Is(err, games.ErrUnauthorized):
				WriteHTTPError(w, http.StatusUnauthorized, "invalid_token")
			default:
				log.Error().Err(err).Int64("game_id", gameID).Msg("replay_failed")
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"gameId": gameID, "actions": views})
	}
}
