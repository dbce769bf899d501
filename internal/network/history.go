package network

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhasgawali/neon-domination/internal/engine"
	"github.com/abhasgawali/neon-domination/internal/infra/storage"
	"github.com/abhasgawali/neon-domination/internal/platform/logger"
)

const maxHistoryLimit = 100

// HistoryHandler serves the archive of finished matches.
type HistoryHandler struct {
	repo   storage.MatchRepository
	logger *logger.Logger
}

func NewHistoryHandler(repo storage.MatchRepository, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, logger: log}
}

// MatchSummary is an archived match as served to clients.
type MatchSummary struct {
	MatchID         string                 `json:"match_id"`
	RoomCode        string                 `json:"room_code"`
	Winner          string                 `json:"winner"`
	DurationSeconds float64                `json:"duration_seconds"`
	EndedAt         string                 `json:"ended_at"`
	Players         []storage.PlayerResult `json:"players"`
}

// HistoryResponse is the body of GET /api/matches.
type HistoryResponse struct {
	Room        string         `json:"room,omitempty"`
	Count       int            `json:"count"`
	GeneratedAt string         `json:"generated_at"`
	Matches     []MatchSummary `json:"matches"`
}

// HandleMatches returns recent matches, newest first.
// GET /api/matches?room=ABC123&limit=20
// GET /api/rooms/{code}/matches?limit=20
func (hh *HistoryHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	room := mux.Vars(r)["code"]
	if room == "" {
		room = r.URL.Query().Get("room")
	}
	room = engine.NormalizeRoomCode(room)

	var (
		matches []storage.MatchRecord
		err     error
	)
	if room != "" {
		matches, err = hh.repo.ByRoom(r.Context(), room, limit)
	} else {
		matches, err = hh.repo.Recent(r.Context(), limit)
	}
	if err != nil {
		hh.logger.Error("failed to load match history", zap.String("room", room), zap.Error(err))
		jsonError(w, "Failed to load match history", http.StatusInternalServerError)
		return
	}

	resp := HistoryResponse{
		Room:        room,
		Count:       len(matches),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Matches:     make([]MatchSummary, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, MatchSummary{
			MatchID:         m.MatchID,
			RoomCode:        m.RoomCode,
			Winner:          m.Winner,
			DurationSeconds: m.Duration.Seconds(),
			EndedAt:         m.EndedAt.UTC().Format(time.RFC3339),
			Players:         m.Players,
		})
	}
	jsonSuccess(w, resp)
}

// RegisterRoutes sets up the history API routes.
func (hh *HistoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/matches", hh.HandleMatches).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{code}/matches", hh.HandleMatches).Methods(http.MethodGet)
}
