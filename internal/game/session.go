package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// Comms is the typed ask/broadcast surface the session drives players
// through. Asks never return errors: timeouts and malformed replies resolve
// to fallback values inside the communication layer.
type Comms interface {
	AskTheme(ctx context.Context, player Player, themes []string, timeout time.Duration) string
	AskImagePrompt(ctx context.Context, player Player, timeout time.Duration) string
	AskQuestion(ctx context.Context, player Player, question Question, timeout time.Duration) PlayerAnswer
	AskGamble(ctx context.Context, player Player, question Question, timeout time.Duration) *Gamble
	BroadcastEvent(roomCode, action string, payload any)
}

type QuestionProvider interface {
	Themes(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, roundNumber int, theme, playerPrompt string) (Question, error)
}

type AssessmentProvider interface {
	Assess(ctx context.Context, originalPrompt string, answers []PlayerAnswer) ([]PlayerAnswer, error)
}

// Announcer produces flavor lines for the room. Every call is best-effort:
// errors are swallowed and the line is simply skipped.
type Announcer interface {
	Greeting(ctx context.Context, players []Player) (string, error)
	RoundSummary(ctx context.Context, round RoundResults) (string, error)
	Closing(ctx context.Context, results Results) (string, error)
}

type Recorder interface {
	RecordRound(state *State, round RoundResults) error
	RecordCompletion(state *State, results Results) error
}

var defaultThemes = []string{
	"animals doing people things",
	"impossible machines",
	"food with feelings",
	"space tourism",
	"historical figures on vacation",
}

type SessionDeps struct {
	Store      StateStore
	Roster     RosterSource
	Comms      Comms
	Questions  QuestionProvider
	Assessor   AssessmentProvider
	Announcer  Announcer
	Recorder   Recorder
	OnComplete func(roomCode string)
}

// Session drives one complete game for one room as a single goroutine.
// All of its writes to the state store happen on that goroutine, so the
// session's own mutations are serialized.
type Session struct {
	roomCode string
	cfg      Configuration
	deps     SessionDeps
	now      func() time.Time
}

func NewSession(roomCode string, cfg Configuration, deps SessionDeps) *Session {
	return &Session{
		roomCode: roomCode,
		cfg:      cfg,
		deps:     deps,
		now:      time.Now,
	}
}

// Run executes the full game. Expected failures (timeouts, provider errors,
// empty rooms) are absorbed inside; anything else is caught here, the room
// is told, and completion is still signalled so the room is never orphaned.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		if s.deps.OnComplete != nil {
			s.deps.OnComplete(s.roomCode)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("game session panic room=%s error=%v", s.roomCode, r)
			s.abandon("the game ran into an unexpected error")
		}
	}()
	s.run(ctx)
}

func (s *Session) run(ctx context.Context) {
	state := s.deps.Store.GetOrCreate(s.roomCode, func() *State {
		return &State{RoomCode: s.roomCode, Status: StatusWaitingForPlayers}
	})
	state.Configuration = s.cfg

	original := s.deps.Roster.ListPlayers(s.roomCode)
	state.Players = original
	for _, player := range original {
		if player.IsHost {
			state.HostPlayerID = player.ID
		}
	}
	s.transition(state, StatusJustStarted)

	s.deps.Comms.BroadcastEvent(s.roomCode, "game_started", map[string]any{
		"room_code":    s.roomCode,
		"total_rounds": s.cfg.TotalRounds,
		"players":      usernames(original),
	})
	s.announce(ctx, func(ctx context.Context) (string, error) {
		return s.deps.Announcer.Greeting(ctx, original)
	})
	s.sleep(ctx, s.transitionDelay())

	mode := modeFor(s.cfg)
	roundNumber := 0
loop:
	for outer := 0; outer < mode.outerRounds(s.cfg, len(original)); outer++ {
		players := s.deps.Roster.ListPlayers(s.roomCode)
		if len(players) == 0 {
			log.Printf("game room empty room=%s round=%d", s.roomCode, roundNumber+1)
			break
		}
		for _, plan := range mode.plans(players, outer) {
			if len(plan.answerers) == 0 {
				log.Printf("game no answerers room=%s round=%d", s.roomCode, roundNumber+1)
				break loop
			}
			roundNumber++
			s.playRound(ctx, state, plan, roundNumber, mode.usesPrompts())
		}
	}

	s.transition(state, StatusCompleted)
	results := AggregateResults(state, original, true, s.now())
	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordCompletion(state, results); err != nil {
			log.Printf("record completion failed room=%s error=%v", s.roomCode, err)
		}
	}
	s.deps.Comms.BroadcastEvent(s.roomCode, "game_results", map[string]any{
		"total_rounds":  results.TotalRounds,
		"was_completed": results.WasCompleted,
		"players":       resultPayload(results),
	})
	s.announce(ctx, func(ctx context.Context) (string, error) {
		return s.deps.Announcer.Closing(ctx, results)
	})
	log.Printf("game completed room=%s rounds=%d players=%d", s.roomCode, results.TotalRounds, len(results.PlayerResults))
}

func (s *Session) playRound(ctx context.Context, state *State, plan roundPlan, roundNumber int, usesPrompts bool) {
	state.CurrentRound = roundNumber
	s.transition(state, StatusStartingRound)

	var theme, prompt string
	if usesPrompts {
		s.transition(state, StatusAskingImagePrompt)
		prompt = s.deps.Comms.AskImagePrompt(ctx, plan.actor, s.themeTimeout())
	} else {
		s.transition(state, StatusAskingTheme)
		themes, err := s.deps.Questions.Themes(ctx)
		if err != nil || len(themes) == 0 {
			if err != nil {
				log.Printf("theme generation failed room=%s error=%v", s.roomCode, err)
			}
			themes = defaultThemes
		}
		theme = s.deps.Comms.AskTheme(ctx, plan.actor, themes, s.themeTimeout())
		s.deps.Comms.BroadcastEvent(s.roomCode, "theme_selected", map[string]any{
			"round_number": roundNumber,
			"theme":        theme,
			"player":       plan.actor.Username,
		})
	}

	question, err := s.deps.Questions.Generate(ctx, roundNumber, theme, prompt)
	if err != nil {
		log.Printf("question generation failed room=%s round=%d error=%v", s.roomCode, roundNumber, err)
		return
	}
	if usesPrompts {
		question.PlayerGenerated = true
		question.PlayerID = plan.actor.ID
	}

	s.transition(state, StatusAskingQuestion)
	answers := make([]PlayerAnswer, len(plan.answerers))
	var gamble *Gamble
	var wg sync.WaitGroup
	for i, player := range plan.answerers {
		wg.Add(1)
		go func(i int, player Player) {
			defer wg.Done()
			answers[i] = s.deps.Comms.AskQuestion(ctx, player, question, s.questionTimeout())
		}(i, player)
	}
	if plan.allowGamble {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gamble = s.deps.Comms.AskGamble(ctx, plan.actor, question, s.questionTimeout())
		}()
	}
	wg.Wait()

	scored, err := s.deps.Assessor.Assess(ctx, question.OriginalPrompt, answers)
	if err != nil {
		log.Printf("assessment failed room=%s round=%d error=%v", s.roomCode, roundNumber, err)
		for i := range answers {
			answers[i].Score = FallbackScore
			answers[i].Reason = "scoring unavailable"
		}
	} else {
		answers = scored
	}

	var outcome *GambleOutcome
	if gamble != nil {
		resolved := ResolveGamble(*gamble, answers)
		outcome = &resolved
		answers = append(answers, PlayerAnswer{
			PlayerID:     plan.actor.ID,
			ConnectionID: plan.actor.ConnectionID,
			Username:     plan.actor.Username,
			IsGambling:   true,
			BonusPoints:  resolved.Payout,
			Reason:       gambleReason(resolved),
			SubmittedAt:  s.now(),
		})
	}

	round := RoundResults{
		RoundNumber: roundNumber,
		Theme:       theme,
		Question:    question,
		Answers:     answers,
	}
	state.RoundResults = append(state.RoundResults, round)
	s.transition(state, StatusShowingRoundResults)

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordRound(state, round); err != nil {
			log.Printf("record round failed room=%s round=%d error=%v", s.roomCode, roundNumber, err)
		}
	}
	s.deps.Comms.BroadcastEvent(s.roomCode, "round_results", map[string]any{
		"round_number": roundNumber,
		"theme":        theme,
		"image_url":    question.ImageURL,
		"prompt":       question.OriginalPrompt,
		"answers":      answerPayload(answers),
	})
	s.announce(ctx, func(ctx context.Context) (string, error) {
		return s.deps.Announcer.RoundSummary(ctx, round)
	})
	s.sleep(ctx, s.transitionDelay())

	if outcome != nil {
		s.deps.Comms.BroadcastEvent(s.roomCode, "gamble_resolved", map[string]any{
			"player_id": outcome.PlayerID,
			"choice":    outcome.Choice,
			"threshold": outcome.Threshold,
			"aggregate": outcome.Aggregate,
			"won":       outcome.Won,
			"payout":    outcome.Payout,
		})
	}
}

func (s *Session) transition(state *State, status Status) {
	state.Status = status
	s.deps.Store.Set(s.roomCode, state)
	log.Printf("game status room=%s status=%s round=%d", s.roomCode, status, state.CurrentRound)
}

func (s *Session) abandon(reason string) {
	if state, ok := s.deps.Store.Get(s.roomCode); ok {
		state.Status = StatusAbandoned
		s.deps.Store.Set(s.roomCode, state)
		if s.deps.Recorder != nil {
			results := AggregateResults(state, state.Players, false, s.now())
			if err := s.deps.Recorder.RecordCompletion(state, results); err != nil {
				log.Printf("record abandon failed room=%s error=%v", s.roomCode, err)
			}
		}
	}
	s.deps.Comms.BroadcastEvent(s.roomCode, "game_failed", map[string]any{
		"reason": reason,
	})
}

func (s *Session) announce(ctx context.Context, line func(ctx context.Context) (string, error)) {
	if s.deps.Announcer == nil {
		return
	}
	text, err := line(ctx)
	if err != nil || text == "" {
		return
	}
	s.deps.Comms.BroadcastEvent(s.roomCode, "announcement", map[string]any{
		"text": text,
	})
}

func (s *Session) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (s *Session) themeTimeout() time.Duration {
	return time.Duration(s.cfg.ThemeTimeoutSec) * time.Second
}

func (s *Session) questionTimeout() time.Duration {
	return time.Duration(s.cfg.QuestionTimeoutSec) * time.Second
}

func (s *Session) transitionDelay() time.Duration {
	return time.Duration(s.cfg.TransitionDelaySec) * time.Second
}

func gambleReason(outcome GambleOutcome) string {
	if outcome.Won {
		return "gamble won"
	}
	return "gamble lost"
}

func usernames(players []Player) []string {
	names := make([]string, 0, len(players))
	for _, player := range players {
		names = append(names, player.Username)
	}
	return names
}

func answerPayload(answers []PlayerAnswer) []map[string]any {
	out := make([]map[string]any, 0, len(answers))
	for _, answer := range answers {
		out = append(out, map[string]any{
			"player_id":    answer.PlayerID,
			"username":     answer.Username,
			"guess":        answer.Guess,
			"is_gambling":  answer.IsGambling,
			"score":        answer.Score,
			"bonus_points": answer.BonusPoints,
			"reason":       answer.Reason,
		})
	}
	return out
}

func resultPayload(results Results) []map[string]any {
	out := make([]map[string]any, 0, len(results.PlayerResults))
	for _, result := range results.PlayerResults {
		out = append(out, map[string]any{
			"player_id":   result.PlayerID,
			"username":    result.Username,
			"avatar":      result.Avatar,
			"final_score": result.FinalScore,
		})
	}
	return out
}
