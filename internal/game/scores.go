package game

import (
	"sort"
	"time"
)

const (
	maxBonusPoints = 30
	fastAnswerSecs = 5
	slowAnswerSecs = 30
	gamblePayout   = 50
	FallbackScore  = 100
	unknownName    = "Unknown"
)

// BonusPoints converts response latency into bonus points: full bonus under
// the fast threshold, decaying linearly to zero at the slow threshold.
// Every phase that rewards latency must go through this function.
func BonusPoints(elapsed time.Duration) int {
	secs := elapsed.Seconds()
	if secs <= fastAnswerSecs {
		return maxBonusPoints
	}
	if secs >= slowAnswerSecs {
		return 0
	}
	remaining := (slowAnswerSecs - secs) / (slowAnswerSecs - fastAnswerSecs)
	return int(float64(maxBonusPoints)*remaining + 0.5)
}

// AggregateResults folds every round's answers into final per-player totals.
// Names and avatars come from the original-roster snapshot so a player who
// left mid-game is still attributed; an answer from a player missing from
// the snapshot falls back to the answer's own username, then "Unknown".
func AggregateResults(state *State, roster []Player, completed bool, endedAt time.Time) Results {
	totals := make(map[string]int)
	names := make(map[string]string)
	avatars := make(map[string]string)

	for _, player := range roster {
		totals[player.ID] = 0
		names[player.ID] = player.Username
		avatars[player.ID] = player.Avatar
	}
	for _, round := range state.RoundResults {
		for _, answer := range round.Answers {
			totals[answer.PlayerID] += answer.Score + answer.BonusPoints
			if _, known := names[answer.PlayerID]; !known {
				names[answer.PlayerID] = answer.Username
			}
		}
	}

	results := make([]PlayerResult, 0, len(totals))
	for playerID, total := range totals {
		name := names[playerID]
		if name == "" {
			name = unknownName
		}
		results = append(results, PlayerResult{
			PlayerID:   playerID,
			Username:   name,
			Avatar:     avatars[playerID],
			FinalScore: total,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].Username < results[j].Username
	})

	return Results{
		PlayerResults: results,
		TotalRounds:   len(state.RoundResults),
		WasCompleted:  completed,
		EndedAt:       endedAt,
	}
}

// ResolveGamble measures the aggregate score+bonus of every non-gambling
// answer from other players and settles the bet. A win pays a flat bonus;
// the aggregate is only the measurement, never the payout.
func ResolveGamble(gamble Gamble, answers []PlayerAnswer) GambleOutcome {
	aggregate := 0
	for _, answer := range answers {
		if answer.IsGambling || answer.PlayerID == gamble.PlayerID {
			continue
		}
		aggregate += answer.Score + answer.BonusPoints
	}
	won := false
	switch gamble.Choice {
	case GambleHigh:
		won = aggregate >= gamble.Threshold
	case GambleLow:
		won = aggregate < gamble.Threshold
	}
	payout := 0
	if won {
		payout = gamblePayout
	}
	return GambleOutcome{
		PlayerID:  gamble.PlayerID,
		Choice:    gamble.Choice,
		Threshold: gamble.Threshold,
		Aggregate: aggregate,
		Won:       won,
		Payout:    payout,
	}
}
