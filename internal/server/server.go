package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"prompt-clash/internal/config"
	"prompt-clash/internal/game"

	"gorm.io/gorm"
)

// eventBus is the slice of the transport the edge needs: ordered publish
// plus plain subscriptions for pumping subjects out to websockets.
type eventBus interface {
	Publish(subject string, data []byte) error
	SubscribeEvents(subject string, handler func([]byte)) (func(), error)
}

type Deps struct {
	Store     *game.MemoryStore
	Comms     game.Comms
	Bus       eventBus
	Questions game.QuestionProvider
	Assessor  game.AssessmentProvider
	Announcer game.Announcer
}

type Server struct {
	store      *game.MemoryStore
	db         *gorm.DB
	comms      game.Comms
	bus        eventBus
	questions  game.QuestionProvider
	assessor   game.AssessmentProvider
	announcer  game.Announcer
	cfg        config.Config
	sessionsMu sync.Mutex
	running    map[string]context.CancelFunc
	dbMu       sync.Mutex
	dbGames    map[string]uint
}

func New(conn *gorm.DB, cfg config.Config, deps Deps) *Server {
	return &Server{
		store:     deps.Store,
		db:        conn,
		comms:     deps.Comms,
		bus:       deps.Bus,
		questions: deps.Questions,
		assessor:  deps.Assessor,
		announcer: deps.Announcer,
		cfg:       cfg,
		running:   make(map[string]context.CancelFunc),
		dbGames:   make(map[string]uint),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{code}", s.handleRoomState)
	mux.HandleFunc("POST /api/rooms/{code}/join", s.handleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{code}/start", s.handleStartGame)
	mux.HandleFunc("GET /ws/rooms/{code}", s.handleWebsocket)
	return mux
}

func (s *Server) gameConfiguration(promptMode bool, totalRounds int) game.Configuration {
	if totalRounds <= 0 {
		totalRounds = s.cfg.TotalRounds
	}
	return game.Configuration{
		MaxPlayers:         s.cfg.MaxPlayers,
		TotalRounds:        totalRounds,
		QuestionTimeoutSec: s.cfg.QuestionTimeoutSeconds,
		ThemeTimeoutSec:    s.cfg.ThemeTimeoutSeconds,
		TransitionDelaySec: s.cfg.TransitionDelaySeconds,
		PromptMode:         promptMode,
	}
}

// startSession spawns the one long-lived goroutine that drives the room's
// game. A second start for the same room is rejected until the first
// signals completion.
func (s *Server) startSession(roomCode string, cfg game.Configuration) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, running := s.running[roomCode]; running {
		return errors.New("game already running")
	}
	if len(s.store.ListPlayers(roomCode)) == 0 {
		return errors.New("room is empty")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running[roomCode] = cancel
	session := game.NewSession(roomCode, cfg, game.SessionDeps{
		Store:      s.store,
		Roster:     s.store,
		Comms:      s.comms,
		Questions:  s.questions,
		Assessor:   s.assessor,
		Announcer:  s.announcer,
		Recorder:   s,
		OnComplete: s.releaseSession,
	})
	go session.Run(ctx)
	return nil
}

func (s *Server) sessionRunning(roomCode string) bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	_, ok := s.running[roomCode]
	return ok
}

func (s *Server) releaseSession(roomCode string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if cancel, ok := s.running[roomCode]; ok {
		delete(s.running, roomCode)
		cancel()
	}
}
