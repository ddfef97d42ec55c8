package game

import (
	"testing"
	"time"
)

func TestGetOrCreateKeepsExistingState(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()

	existing := &State{RoomCode: code, Status: StatusAskingQuestion}
	store.Set(code, existing)

	got := store.GetOrCreate(code, func() *State {
		return &State{RoomCode: code, Status: StatusWaitingForPlayers}
	})
	if got.Status != StatusAskingQuestion {
		t.Fatalf("expected existing status preserved, got %s", got.Status)
	}
}

func TestGetOrCreateCreatesWhenMissing(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()

	got := store.GetOrCreate(code, func() *State {
		return &State{RoomCode: code, Status: StatusWaitingForPlayers}
	})
	if got == nil || got.Status != StatusWaitingForPlayers {
		t.Fatalf("expected fresh state, got %#v", got)
	}
	again, ok := store.Get(code)
	if !ok || again.Status != StatusWaitingForPlayers {
		t.Fatal("expected Get to return the created state")
	}
}

func TestGetReturnsDetachedSnapshot(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()
	store.Set(code, &State{
		RoomCode: code,
		Status:   StatusAskingQuestion,
		RoundResults: []RoundResults{
			{RoundNumber: 1, Answers: []PlayerAnswer{{PlayerID: "a", Score: 40}}},
		},
	})

	first, ok := store.Get(code)
	if !ok {
		t.Fatal("expected state")
	}
	first.Status = StatusCompleted
	first.RoundResults[0].Answers[0].Score = 99
	first.RoundResults = append(first.RoundResults, RoundResults{RoundNumber: 2})

	second, ok := store.Get(code)
	if !ok {
		t.Fatal("expected state")
	}
	if second.Status != StatusAskingQuestion {
		t.Fatalf("expected stored status untouched, got %s", second.Status)
	}
	if len(second.RoundResults) != 1 {
		t.Fatalf("expected 1 stored round, got %d", len(second.RoundResults))
	}
	if second.RoundResults[0].Answers[0].Score != 40 {
		t.Fatalf("expected stored score untouched, got %d", second.RoundResults[0].Answers[0].Score)
	}
}

func TestSweepRemovesIdleRooms(t *testing.T) {
	store := NewMemoryStore(0)
	store.ttl = time.Hour
	base := time.Now()
	store.now = func() time.Time { return base }

	idle := store.CreateRoom()
	active := store.CreateRoom()

	// Touch the active room two hours later, then sweep.
	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	store.Set(active, &State{RoomCode: active})

	removed := store.sweep(base.Add(2 * time.Hour))
	if removed != 1 {
		t.Fatalf("expected 1 room swept, got %d", removed)
	}
	if store.RoomExists(idle) {
		t.Fatal("expected idle room to be removed")
	}
	if !store.RoomExists(active) {
		t.Fatal("expected active room to survive")
	}
}

func TestAddPlayerReconnectUpdatesConnection(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()

	if err := store.AddPlayer(code, Player{ID: "p1", Username: "Ada", ConnectionID: "c1"}); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := store.AddPlayer(code, Player{ID: "p1", Username: "Ada", ConnectionID: "c2"}); err != nil {
		t.Fatalf("reconnect: %v", err)
	}

	players := store.ListPlayers(code)
	if len(players) != 1 {
		t.Fatalf("expected 1 player after reconnect, got %d", len(players))
	}
	if players[0].ConnectionID != "c2" {
		t.Fatalf("expected connection updated to c2, got %s", players[0].ConnectionID)
	}
}

func TestAddPlayerRejectsDuplicateUsername(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()

	if err := store.AddPlayer(code, Player{ID: "p1", Username: "Ada"}); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := store.AddPlayer(code, Player{ID: "p2", Username: "Ada"}); err == nil {
		t.Fatal("expected duplicate username to be rejected")
	}
}

func TestAddPlayerRejectsFullRoom(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()
	store.Set(code, &State{RoomCode: code, Configuration: Configuration{MaxPlayers: 1}})

	if err := store.AddPlayer(code, Player{ID: "p1", Username: "Ada"}); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := store.AddPlayer(code, Player{ID: "p2", Username: "Bob"}); err == nil {
		t.Fatal("expected full room to be rejected")
	}
}

func TestFindPlayerByConnection(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()
	if err := store.AddPlayer(code, Player{ID: "p1", Username: "Ada", ConnectionID: "c1"}); err != nil {
		t.Fatalf("add player: %v", err)
	}

	player, ok := store.FindPlayerByConnection(code, "c1")
	if !ok || player.ID != "p1" {
		t.Fatalf("expected to find p1, got %#v ok=%v", player, ok)
	}
	if _, ok := store.FindPlayerByConnection(code, "nope"); ok {
		t.Fatal("expected unknown connection to miss")
	}
}

func TestRemovePlayer(t *testing.T) {
	store := NewMemoryStore(0)
	code := store.CreateRoom()
	if err := store.AddPlayer(code, Player{ID: "p1", Username: "Ada"}); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := store.AddPlayer(code, Player{ID: "p2", Username: "Bob"}); err != nil {
		t.Fatalf("add player: %v", err)
	}

	store.RemovePlayer(code, "p1")
	players := store.ListPlayers(code)
	if len(players) != 1 || players[0].ID != "p2" {
		t.Fatalf("expected only p2 left, got %#v", players)
	}
}
