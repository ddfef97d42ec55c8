package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"prompt-clash/internal/comms"

	"github.com/gorilla/websocket"
)

// wsClient serializes writes: room events and private asks arrive from two
// independent subscriptions.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		_ = c.conn.Close()
	}
}

// handleWebsocket bridges one player to the bus: the room's event subject
// and the player's private ask subject are pumped out to the socket, and
// every inbound message is published to the shared reply subject carrying
// the correlation id the client echoes back.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("code")
	connectionID := r.URL.Query().Get("connection")
	player, ok := s.store.FindPlayerByConnection(roomCode, connectionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room=%s player=%s remote=%s", roomCode, player.ID, r.RemoteAddr)

	client := &wsClient{conn: conn}
	unsubRoom, err := s.bus.SubscribeEvents(comms.RoomSubject(roomCode), client.send)
	if err != nil {
		log.Printf("ws subscribe failed room=%s error=%v", roomCode, err)
		_ = conn.Close()
		return
	}
	unsubPlayer, err := s.bus.SubscribeEvents(comms.PlayerSubject(connectionID), client.send)
	if err != nil {
		log.Printf("ws subscribe failed room=%s player=%s error=%v", roomCode, player.ID, err)
		unsubRoom()
		_ = conn.Close()
		return
	}
	go s.readWS(roomCode, player.ID, client, func() {
		unsubRoom()
		unsubPlayer()
	})
}

func (s *Server) readWS(roomCode, playerID string, client *wsClient, unsubscribe func()) {
	defer func() {
		unsubscribe()
		_ = client.conn.Close()
		s.store.RemovePlayer(roomCode, playerID)
		// Last one out clears the state; the room code stays claimable
		// until the TTL sweep.
		if len(s.store.ListPlayers(roomCode)) == 0 && !s.sessionRunning(roomCode) {
			s.store.Delete(roomCode)
			log.Printf("room state cleared room=%s", roomCode)
		}
		log.Printf("ws disconnected room=%s player=%s", roomCode, playerID)
	}()
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var reply comms.Reply
		if err := json.Unmarshal(data, &reply); err != nil || reply.CorrelationID == "" {
			log.Printf("ws reply ignored room=%s player=%s", roomCode, playerID)
			continue
		}
		payload, err := json.Marshal(reply)
		if err != nil {
			continue
		}
		if err := s.bus.Publish(comms.ReplySubject, payload); err != nil {
			log.Printf("ws reply publish failed room=%s player=%s error=%v", roomCode, playerID, err)
		}
	}
}
