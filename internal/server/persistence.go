package server

import (
	"encoding/json"
	"errors"
	"time"

	"prompt-clash/internal/db"
	"prompt-clash/internal/game"

	"gorm.io/datatypes"
)

// Write-behind persistence: the in-memory store stays authoritative and
// every method is a no-op without a database connection.

func (s *Server) persistGame(roomCode string, cfg game.Configuration) error {
	if s.db == nil {
		return nil
	}
	mode := "classic"
	if cfg.PromptMode {
		mode = "prompt"
	}
	record := db.Game{
		RoomCode:    roomCode,
		Status:      string(game.StatusWaitingForPlayers),
		Mode:        mode,
		TotalRounds: cfg.TotalRounds,
		MaxPlayers:  cfg.MaxPlayers,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	s.dbMu.Lock()
	s.dbGames[roomCode] = record.ID
	s.dbMu.Unlock()
	return s.persistEvent(record.ID, nil, "game_created", map[string]any{
		"room_code": roomCode,
	})
}

func (s *Server) persistPlayer(roomCode string, player game.Player) error {
	if s.db == nil {
		return nil
	}
	gameID, ok := s.gameDBID(roomCode)
	if !ok {
		return errors.New("game not persisted")
	}
	record := db.Player{
		GameID:    gameID,
		PlayerUID: player.ID,
		Username:  player.Username,
		Avatar:    player.Avatar,
		IsHost:    player.IsHost,
		JoinedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	return s.persistEvent(gameID, nil, "player_joined", map[string]any{
		"player_id": player.ID,
		"username":  player.Username,
	})
}

// RecordRound persists one completed round with its answers.
func (s *Server) RecordRound(state *game.State, round game.RoundResults) error {
	if s.db == nil {
		return nil
	}
	gameID, ok := s.gameDBID(state.RoomCode)
	if !ok {
		return errors.New("game not persisted")
	}
	record := db.Round{
		GameID:          gameID,
		Number:          round.RoundNumber,
		Theme:           round.Theme,
		Prompt:          round.Question.OriginalPrompt,
		ImageURL:        round.Question.ImageURL,
		PlayerGenerated: round.Question.PlayerGenerated,
		AuthorUID:       round.Question.PlayerID,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	for _, answer := range round.Answers {
		row := db.Answer{
			RoundID:     record.ID,
			PlayerUID:   answer.PlayerID,
			Username:    answer.Username,
			Guess:       answer.Guess,
			IsGambling:  answer.IsGambling,
			Score:       answer.Score,
			BonusPoints: answer.BonusPoints,
			Reason:      answer.Reason,
			SubmittedAt: answer.SubmittedAt,
		}
		if err := s.db.Create(&row).Error; err != nil {
			return err
		}
	}
	if err := s.updateGameStatus(gameID, state.Status); err != nil {
		return err
	}
	return s.persistEvent(gameID, &record.ID, "round_completed", map[string]any{
		"round_number": round.RoundNumber,
		"answers":      len(round.Answers),
	})
}

// RecordCompletion persists the final status and results summary.
func (s *Server) RecordCompletion(state *game.State, results game.Results) error {
	if s.db == nil {
		return nil
	}
	gameID, ok := s.gameDBID(state.RoomCode)
	if !ok {
		return errors.New("game not persisted")
	}
	if err := s.updateGameStatus(gameID, state.Status); err != nil {
		return err
	}
	scores := make(map[string]int, len(results.PlayerResults))
	for _, result := range results.PlayerResults {
		scores[result.Username] = result.FinalScore
	}
	eventType := "game_completed"
	if state.Status == game.StatusAbandoned {
		eventType = "game_abandoned"
	}
	return s.persistEvent(gameID, nil, eventType, map[string]any{
		"total_rounds":  results.TotalRounds,
		"was_completed": results.WasCompleted,
		"scores":        scores,
	})
}

func (s *Server) updateGameStatus(gameID uint, status game.Status) error {
	return s.db.Model(&db.Game{}).Where("id = ?", gameID).Update("status", string(status)).Error
}

func (s *Server) persistEvent(gameID uint, roundID *uint, eventType string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		GameID:  gameID,
		RoundID: roundID,
		Type:    eventType,
		Payload: datatypes.JSON(body),
	}
	return s.db.Create(&record).Error
}

func (s *Server) gameDBID(roomCode string) (uint, bool) {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	id, ok := s.dbGames[roomCode]
	return id, ok
}
