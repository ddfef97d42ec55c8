package ai

import (
	"context"
	"fmt"
	"strings"

	"prompt-clash/internal/game"
)

const announcerSystemPrompt = "You are the cheeky announcer of an image guessing game. " +
	"Reply with a single short line, no quotes."

func (c *Client) Greeting(ctx context.Context, players []game.Player) (string, error) {
	names := make([]string, 0, len(players))
	for _, player := range players {
		names = append(names, player.Username)
	}
	user := "Welcome these players to a new game: " + strings.Join(names, ", ")
	return c.announce(ctx, user)
}

func (c *Client) RoundSummary(ctx context.Context, round game.RoundResults) (string, error) {
	var best game.PlayerAnswer
	for _, answer := range round.Answers {
		if answer.IsGambling {
			continue
		}
		if answer.Score+answer.BonusPoints > best.Score+best.BonusPoints {
			best = answer
		}
	}
	user := fmt.Sprintf("Round %d is over. The image prompt was %q. Best guess was %q by %s.",
		round.RoundNumber, round.Question.OriginalPrompt, best.Guess, best.Username)
	return c.announce(ctx, user)
}

func (c *Client) Closing(ctx context.Context, results game.Results) (string, error) {
	user := "The game is over."
	if len(results.PlayerResults) > 0 {
		winner := results.PlayerResults[0]
		user = fmt.Sprintf("The game is over. %s wins with %d points.", winner.Username, winner.FinalScore)
	}
	return c.announce(ctx, user)
}

func (c *Client) announce(ctx context.Context, user string) (string, error) {
	line, err := c.chat(ctx, announcerSystemPrompt, user, 0.8, 80)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
