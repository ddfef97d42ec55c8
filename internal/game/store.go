package game

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"
)

// StateStore persists game state by room code. Implementations hand out
// deep-copied snapshots, so a caller's State is never shared with the
// session goroutine that keeps mutating its own working copy.
type StateStore interface {
	Get(roomCode string) (*State, bool)
	Set(roomCode string, state *State)
	GetOrCreate(roomCode string, create func() *State) *State
	Delete(roomCode string)
}

type RosterSource interface {
	ListPlayers(roomCode string) []Player
}

type room struct {
	code      string
	players   []Player
	state     *State
	touchedAt time.Time
}

// MemoryStore keeps rooms, their live rosters and their game state in
// process. Rooms expire after the TTL elapses without activity. State moves
// in and out as deep copies, so HTTP readers never race the session
// goroutine's writes.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*room
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		rooms: make(map[string]*room),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweepLoop()
	}
	return s
}

func (s *MemoryStore) Close() {
	close(s.stop)
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(s.now())
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for code, r := range s.rooms {
		if now.Sub(r.touchedAt) > s.ttl {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) CreateRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		code := newRoomCode()
		if _, taken := s.rooms[code]; taken {
			continue
		}
		s.rooms[code] = &room{code: code, touchedAt: s.now()}
		return code
	}
}

func (s *MemoryStore) RoomExists(roomCode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[roomCode]
	return ok
}

func (s *MemoryStore) AddPlayer(roomCode string, player Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		return errors.New("room not found")
	}
	for i := range r.players {
		if r.players[i].ID == player.ID {
			// Reconnect: only the transport address changes.
			r.players[i].ConnectionID = player.ConnectionID
			r.touchedAt = s.now()
			return nil
		}
		if r.players[i].Username == player.Username {
			return errors.New("username already taken")
		}
	}
	if max := s.maxPlayers(r); max > 0 && len(r.players) >= max {
		return errors.New("room full")
	}
	r.players = append(r.players, player)
	r.touchedAt = s.now()
	return nil
}

func (s *MemoryStore) maxPlayers(r *room) int {
	if r.state == nil {
		return 0
	}
	return r.state.Configuration.MaxPlayers
}

func (s *MemoryStore) RemovePlayer(roomCode, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		return
	}
	for i := range r.players {
		if r.players[i].ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	r.touchedAt = s.now()
}

func (s *MemoryStore) ListPlayers(roomCode string) []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		return nil
	}
	players := make([]Player, len(r.players))
	copy(players, r.players)
	return players
}

func (s *MemoryStore) FindPlayerByConnection(roomCode, connectionID string) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		return Player{}, false
	}
	for _, player := range r.players {
		if player.ConnectionID == connectionID {
			return player, true
		}
	}
	return Player{}, false
}

// Get returns a snapshot of the room's state. Mutating it never touches
// the stored state; writers publish through Set.
func (s *MemoryStore) Get(roomCode string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok || r.state == nil {
		return nil, false
	}
	r.touchedAt = s.now()
	return cloneState(r.state), true
}

func (s *MemoryStore) Set(roomCode string, state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		r = &room{code: roomCode}
		s.rooms[roomCode] = r
	}
	r.state = cloneState(state)
	r.touchedAt = s.now()
}

// GetOrCreate never overwrites an existing state blindly; a concurrent
// writer that got there first wins. Like Get, it returns a snapshot.
func (s *MemoryStore) GetOrCreate(roomCode string, create func() *State) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		r = &room{code: roomCode}
		s.rooms[roomCode] = r
	}
	if r.state == nil {
		r.state = cloneState(create())
	}
	r.touchedAt = s.now()
	return cloneState(r.state)
}

func (s *MemoryStore) Delete(roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomCode]
	if !ok {
		return
	}
	r.state = nil
	r.touchedAt = s.now()
}

func cloneState(state *State) *State {
	if state == nil {
		return nil
	}
	out := *state
	out.Players = append([]Player(nil), state.Players...)
	if state.RoundResults != nil {
		out.RoundResults = make([]RoundResults, len(state.RoundResults))
		for i, round := range state.RoundResults {
			round.Answers = append([]PlayerAnswer(nil), round.Answers...)
			out.RoundResults[i] = round
		}
	}
	return &out
}

func newRoomCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "AAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
