package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abhasgawali/neon-domination/internal/engine"
)

// RoomLister reports the live rooms.
type RoomLister interface {
	Rooms() []engine.RoomInfo
}

// LobbyAPI exposes the room browser.
type LobbyAPI struct {
	rooms RoomLister
}

func NewLobbyAPI(rooms RoomLister) *LobbyAPI {
	return &LobbyAPI{rooms: rooms}
}

// RoomsResponse is the body of GET /api/rooms.
type RoomsResponse struct {
	GeneratedAt string            `json:"generated_at"`
	Count       int               `json:"count"`
	Open        int               `json:"open"`
	Rooms       []engine.RoomInfo `json:"rooms"`
}

// HandleRooms lists every live room.
// GET /api/rooms?status=waiting
func (api *LobbyAPI) HandleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := engine.Status(r.URL.Query().Get("status"))
	switch status {
	case "", engine.StatusWaiting, engine.StatusPlaying, engine.StatusEnded:
	default:
		jsonError(w, "Unknown status filter", http.StatusBadRequest)
		return
	}

	rooms := make([]engine.RoomInfo, 0)
	open := 0
	for _, info := range api.rooms.Rooms() {
		if status != "" && info.Status != status {
			continue
		}
		if info.Status != engine.StatusEnded && info.Players < info.Capacity {
			open++
		}
		rooms = append(rooms, info)
	}

	jsonSuccess(w, RoomsResponse{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Count:       len(rooms),
		Open:        open,
		Rooms:       rooms,
	})
}

// RegisterRoutes sets up the lobby API routes.
func (api *LobbyAPI) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/rooms", api.HandleRooms).Methods(http.MethodGet)
}

// jsonError sends an error response.
func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
