package game

import (
	"testing"
	"time"
)

func TestBonusPointsSchedule(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{name: "instant", elapsed: 0, want: 30},
		{name: "at fast threshold", elapsed: 5 * time.Second, want: 30},
		{name: "ten seconds", elapsed: 10 * time.Second, want: 24},
		{name: "midpoint", elapsed: 17500 * time.Millisecond, want: 15},
		{name: "at slow threshold", elapsed: 30 * time.Second, want: 0},
		{name: "past slow threshold", elapsed: time.Minute, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BonusPoints(tc.elapsed)
			if got != tc.want {
				t.Fatalf("expected %d bonus points for %s, got %d", tc.want, tc.elapsed, got)
			}
		})
	}
}

func TestAggregateResultsSumsAcrossRounds(t *testing.T) {
	roster := []Player{
		{ID: "a", Username: "Ada", Avatar: "cat"},
		{ID: "b", Username: "Bob", Avatar: "dog"},
	}
	state := &State{
		RoomCode: "ABCD",
		RoundResults: []RoundResults{
			{RoundNumber: 1, Answers: []PlayerAnswer{
				{PlayerID: "a", Score: 50, BonusPoints: 10},
				{PlayerID: "b", Score: 75, BonusPoints: 30},
			}},
			{RoundNumber: 2, Answers: []PlayerAnswer{
				{PlayerID: "a", Score: 20},
			}},
		},
	}

	results := AggregateResults(state, roster, true, time.Now())
	if len(results.PlayerResults) != 2 {
		t.Fatalf("expected 2 player results, got %d", len(results.PlayerResults))
	}
	if results.PlayerResults[0].PlayerID != "b" || results.PlayerResults[0].FinalScore != 105 {
		t.Fatalf("expected b with 105 first, got %#v", results.PlayerResults[0])
	}
	if results.PlayerResults[1].PlayerID != "a" || results.PlayerResults[1].FinalScore != 80 {
		t.Fatalf("expected a with 80 second, got %#v", results.PlayerResults[1])
	}
	if results.PlayerResults[0].Username != "Bob" || results.PlayerResults[0].Avatar != "dog" {
		t.Fatalf("expected roster attribution, got %#v", results.PlayerResults[0])
	}
	if results.TotalRounds != 2 || !results.WasCompleted {
		t.Fatalf("unexpected results summary: %#v", results)
	}
}

func TestAggregateResultsSilentPlayerScoresZero(t *testing.T) {
	roster := []Player{
		{ID: "a", Username: "Ada"},
		{ID: "c", Username: "Cleo"},
	}
	state := &State{
		RoundResults: []RoundResults{
			{RoundNumber: 1, Answers: []PlayerAnswer{
				{PlayerID: "a", Score: 40},
			}},
		},
	}

	results := AggregateResults(state, roster, true, time.Now())
	if len(results.PlayerResults) != 2 {
		t.Fatalf("expected 2 player results, got %d", len(results.PlayerResults))
	}
	var cleo *PlayerResult
	for i := range results.PlayerResults {
		if results.PlayerResults[i].PlayerID == "c" {
			cleo = &results.PlayerResults[i]
		}
	}
	if cleo == nil || cleo.FinalScore != 0 {
		t.Fatalf("expected Cleo present with 0, got %#v", cleo)
	}
}

func TestAggregateResultsUnknownPlayerFallsBack(t *testing.T) {
	state := &State{
		RoundResults: []RoundResults{
			{RoundNumber: 1, Answers: []PlayerAnswer{
				{PlayerID: "ghost", Username: "", Score: 10},
				{PlayerID: "late", Username: "Late Larry", Score: 5},
			}},
		},
	}

	results := AggregateResults(state, nil, true, time.Now())
	byID := make(map[string]PlayerResult)
	for _, result := range results.PlayerResults {
		byID[result.PlayerID] = result
	}
	if byID["ghost"].Username != "Unknown" {
		t.Fatalf("expected Unknown for lost player record, got %q", byID["ghost"].Username)
	}
	if byID["late"].Username != "Late Larry" {
		t.Fatalf("expected answer username fallback, got %q", byID["late"].Username)
	}
}

func TestResolveGambleHighWin(t *testing.T) {
	gamble := Gamble{PlayerID: "author", Choice: GambleHigh, Threshold: 60}
	answers := []PlayerAnswer{
		{PlayerID: "other", Score: 60, BonusPoints: 15},
		{PlayerID: "author", IsGambling: true, BonusPoints: 99},
	}

	outcome := ResolveGamble(gamble, answers)
	if outcome.Aggregate != 75 {
		t.Fatalf("expected aggregate 75, got %d", outcome.Aggregate)
	}
	if !outcome.Won || outcome.Payout != 50 {
		t.Fatalf("expected win with payout 50, got %#v", outcome)
	}
}

func TestResolveGambleLow(t *testing.T) {
	answers := []PlayerAnswer{
		{PlayerID: "other", Score: 30, BonusPoints: 10},
	}

	win := ResolveGamble(Gamble{PlayerID: "author", Choice: GambleLow, Threshold: 60}, answers)
	if !win.Won || win.Payout != 50 {
		t.Fatalf("expected low gamble to win under threshold, got %#v", win)
	}
	loss := ResolveGamble(Gamble{PlayerID: "author", Choice: GambleHigh, Threshold: 60}, answers)
	if loss.Won || loss.Payout != 0 {
		t.Fatalf("expected high gamble to lose under threshold, got %#v", loss)
	}
}

func TestResolveGambleUnknownChoiceLoses(t *testing.T) {
	outcome := ResolveGamble(Gamble{PlayerID: "author", Choice: "sideways", Threshold: 0}, nil)
	if outcome.Won || outcome.Payout != 0 {
		t.Fatalf("expected unknown choice to lose, got %#v", outcome)
	}
}
