package comms

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"prompt-clash/internal/game"

	"github.com/google/uuid"
)

const defaultGrace = 5 * time.Second

type themeRequest struct {
	Themes     []string `json:"themes"`
	TimeoutSec int      `json:"timeout_sec"`
}

type themeReply struct {
	Theme string `json:"theme"`
}

type promptRequest struct {
	TimeoutSec int `json:"timeout_sec"`
}

type promptReply struct {
	Prompt string `json:"prompt"`
}

type questionRequest struct {
	QuestionID  string `json:"question_id"`
	RoundNumber int    `json:"round_number"`
	Theme       string `json:"theme,omitempty"`
	ImageURL    string `json:"image_url"`
	TimeoutSec  int    `json:"timeout_sec"`
}

type answerReply struct {
	Guess      string `json:"guess"`
	IsGambling bool   `json:"is_gambling"`
}

type gambleReply struct {
	Choice    string `json:"choice"`
	Threshold int    `json:"threshold"`
}

// Service turns "ask player X, wait up to T" into a plain return value on
// top of a fire-and-forget transport. One shared reply listener serves all
// outstanding asks via the correlation table.
type Service struct {
	channel Channel
	pending *pendingTable
	grace   time.Duration
	stop    func()
}

func NewService(channel Channel, grace time.Duration) (*Service, error) {
	if grace <= 0 {
		grace = defaultGrace
	}
	s := &Service{
		channel: channel,
		pending: newPendingTable(),
		grace:   grace,
	}
	stop, err := channel.SubscribeReplies(ReplySubject, s.handleReply)
	if err != nil {
		return nil, err
	}
	s.stop = stop
	return s, nil
}

func (s *Service) Close() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *Service) handleReply(d Delivery) {
	if s.pending.resolve(d.CorrelationID, d.Body) {
		if err := d.Ack(); err != nil {
			log.Printf("reply ack failed correlation_id=%s error=%v", d.CorrelationID, err)
		}
		return
	}
	// Late, duplicate or foreign reply: hand it back to the transport.
	log.Printf("reply abandoned correlation_id=%s", d.CorrelationID)
	if err := d.Abandon(); err != nil {
		log.Printf("reply abandon failed correlation_id=%s error=%v", d.CorrelationID, err)
	}
}

// ask registers the pending entry before publishing, so a reply can never
// arrive ahead of its waiter. The second return reports whether a reply
// came back in time.
func (s *Service) ask(ctx context.Context, player game.Player, action string, payload any, timeout time.Duration) ([]byte, bool) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ask payload marshal failed action=%s error=%v", action, err)
		return nil, false
	}
	id := uuid.NewString()
	ch := s.pending.register(id)
	req := Request{
		Action:        action,
		CorrelationID: id,
		ReplyTo:       ReplySubject,
		RoomCode:      player.RoomCode,
		Payload:       body,
	}
	data, err := json.Marshal(req)
	if err != nil {
		s.pending.drop(id)
		return nil, false
	}
	if err := s.channel.Publish(PlayerSubject(player.ConnectionID), data); err != nil {
		s.pending.drop(id)
		log.Printf("ask publish failed action=%s player=%s error=%v", action, player.ID, err)
		return nil, false
	}
	select {
	case reply := <-ch:
		return reply, true
	case <-time.After(timeout + s.grace):
		s.pending.drop(id)
		return nil, false
	case <-ctx.Done():
		s.pending.drop(id)
		return nil, false
	}
}

// AskTheme offers the candidates to the acting player and tells the rest of
// the room that a selection is in progress. Falls back to the first
// candidate; never fails.
func (s *Service) AskTheme(ctx context.Context, player game.Player, themes []string, timeout time.Duration) string {
	if len(themes) == 0 {
		return ""
	}
	s.BroadcastEvent(player.RoomCode, "theme_selection", map[string]any{
		"player":      player.Username,
		"themes":      themes,
		"timeout_sec": int(timeout.Seconds()),
	})
	body, ok := s.ask(ctx, player, "choose_theme", themeRequest{
		Themes:     themes,
		TimeoutSec: int(timeout.Seconds()),
	}, timeout)
	if !ok {
		return themes[0]
	}
	var reply themeReply
	if err := json.Unmarshal(body, &reply); err != nil || reply.Theme == "" {
		return themes[0]
	}
	return reply.Theme
}

// AskImagePrompt returns the player's authored prompt, or "" on timeout.
func (s *Service) AskImagePrompt(ctx context.Context, player game.Player, timeout time.Duration) string {
	body, ok := s.ask(ctx, player, "submit_prompt", promptRequest{
		TimeoutSec: int(timeout.Seconds()),
	}, timeout)
	if !ok {
		return ""
	}
	var reply promptReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return ""
	}
	return reply.Prompt
}

// AskQuestion always produces an answer record: a real guess when the
// player replied in time, otherwise an empty guess with a diagnostic
// reason. Bonus points come from elapsed wait either way.
func (s *Service) AskQuestion(ctx context.Context, player game.Player, question game.Question, timeout time.Duration) game.PlayerAnswer {
	started := time.Now()
	body, ok := s.ask(ctx, player, "answer_question", questionRequest{
		QuestionID:  question.ID,
		RoundNumber: question.RoundNumber,
		Theme:       question.Theme,
		ImageURL:    question.ImageURL,
		TimeoutSec:  int(timeout.Seconds()),
	}, timeout)
	elapsed := time.Since(started)

	answer := game.PlayerAnswer{
		PlayerID:     player.ID,
		ConnectionID: player.ConnectionID,
		Username:     player.Username,
		BonusPoints:  game.BonusPoints(elapsed),
		SubmittedAt:  time.Now(),
	}
	if !ok {
		answer.Reason = "no answer before timeout"
	} else {
		var reply answerReply
		if err := json.Unmarshal(body, &reply); err != nil {
			answer.Reason = "unreadable answer"
		} else {
			answer.Guess = reply.Guess
			answer.IsGambling = reply.IsGambling
		}
	}
	s.BroadcastEvent(player.RoomCode, "player_answered", map[string]any{
		"player_id":    player.ID,
		"username":     player.Username,
		"round_number": question.RoundNumber,
		"answered":     answer.Guess != "",
	})
	return answer
}

// AskGamble returns nil when the player declines, replies late or replies
// with an unknown choice.
func (s *Service) AskGamble(ctx context.Context, player game.Player, question game.Question, timeout time.Duration) *game.Gamble {
	body, ok := s.ask(ctx, player, "place_gamble", questionRequest{
		QuestionID:  question.ID,
		RoundNumber: question.RoundNumber,
		ImageURL:    question.ImageURL,
		TimeoutSec:  int(timeout.Seconds()),
	}, timeout)
	if !ok {
		return nil
	}
	var reply gambleReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil
	}
	if reply.Choice != game.GambleHigh && reply.Choice != game.GambleLow {
		return nil
	}
	return &game.Gamble{
		PlayerID:  player.ID,
		Choice:    reply.Choice,
		Threshold: reply.Threshold,
	}
}

// BroadcastEvent is fire-and-forget: failures are logged, never surfaced.
func (s *Service) BroadcastEvent(roomCode, action string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broadcast marshal failed room=%s action=%s error=%v", roomCode, action, err)
		return
	}
	data, err := json.Marshal(Event{Action: action, Payload: body})
	if err != nil {
		return
	}
	if err := s.channel.Publish(RoomSubject(roomCode), data); err != nil {
		log.Printf("broadcast failed room=%s action=%s error=%v", roomCode, action, err)
	}
}
