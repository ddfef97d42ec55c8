package server

import (
	"log"
	"net/http"
	"strings"

	"prompt-clash/internal/game"

	"github.com/google/uuid"
)

type createRoomRequest struct {
	TotalRounds int  `json:"total_rounds"`
	PromptMode  bool `json:"prompt_mode"`
}

type joinRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type startRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := readJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}
	roomCode := s.store.CreateRoom()
	cfg := s.gameConfiguration(req.PromptMode, req.TotalRounds)
	s.store.GetOrCreate(roomCode, func() *game.State {
		return &game.State{
			RoomCode:      roomCode,
			Status:        game.StatusWaitingForPlayers,
			Configuration: cfg,
		}
	})
	if err := s.persistGame(roomCode, cfg); err != nil {
		log.Printf("persist game failed room=%s error=%v", roomCode, err)
	}
	log.Printf("room created room=%s prompt_mode=%v rounds=%d", roomCode, cfg.PromptMode, cfg.TotalRounds)
	writeJSON(w, http.StatusCreated, map[string]any{
		"room_code": roomCode,
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("code")
	if !s.store.RoomExists(roomCode) {
		http.NotFound(w, r)
		return
	}
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	player := game.Player{
		ID:           uuid.NewString(),
		Username:     username,
		Avatar:       req.Avatar,
		ConnectionID: uuid.NewString(),
		RoomCode:     roomCode,
		IsHost:       len(s.store.ListPlayers(roomCode)) == 0,
	}
	if err := s.store.AddPlayer(roomCode, player); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistPlayer(roomCode, player); err != nil {
		log.Printf("persist player failed room=%s player=%s error=%v", roomCode, player.ID, err)
	}
	log.Printf("player joined room=%s player=%s username=%s", roomCode, player.ID, username)
	writeJSON(w, http.StatusCreated, map[string]any{
		"room_code":     roomCode,
		"player_id":     player.ID,
		"connection_id": player.ConnectionID,
		"username":      player.Username,
		"is_host":       player.IsHost,
	})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("code")
	state, ok := s.store.Get(roomCode)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := readJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	host := false
	for _, player := range s.store.ListPlayers(roomCode) {
		if player.ID == req.PlayerID && player.IsHost {
			host = true
			break
		}
	}
	if !host {
		writeError(w, http.StatusForbidden, "only the host can start the game")
		return
	}
	if err := s.startSession(roomCode, state.Configuration); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	log.Printf("game starting room=%s", roomCode)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"room_code": roomCode,
	})
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("code")
	state, ok := s.store.Get(roomCode)
	if !ok {
		http.NotFound(w, r)
		return
	}
	players := s.store.ListPlayers(roomCode)
	names := make([]string, 0, len(players))
	for _, player := range players {
		names = append(names, player.Username)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_code":     roomCode,
		"status":        state.Status,
		"current_round": state.CurrentRound,
		"total_rounds":  state.Configuration.TotalRounds,
		"players":       names,
	})
}
