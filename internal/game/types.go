package game

import "time"

type Status string

const (
	StatusWaitingForPlayers   Status = "waiting_for_players"
	StatusJustStarted         Status = "just_started"
	StatusStartingRound       Status = "starting_round"
	StatusAskingTheme         Status = "asking_theme"
	StatusAskingImagePrompt   Status = "asking_image_prompt"
	StatusAskingQuestion      Status = "asking_question"
	StatusShowingRoundResults Status = "showing_round_results"
	StatusCompleted           Status = "completed"
	StatusAbandoned           Status = "abandoned"
)

const (
	GambleHigh = "high"
	GambleLow  = "low"
)

type Player struct {
	ID           string
	Username     string
	Avatar       string
	ConnectionID string
	RoomCode     string
	IsHost       bool
}

type Configuration struct {
	MaxPlayers         int
	TotalRounds        int
	QuestionTimeoutSec int
	ThemeTimeoutSec    int
	TransitionDelaySec int
	PromptMode         bool
}

type State struct {
	RoomCode      string
	Status        Status
	CurrentRound  int
	Configuration Configuration
	HostPlayerID  string
	Players       []Player
	RoundResults  []RoundResults
}

type Question struct {
	ID              string
	Theme           string
	OriginalPrompt  string
	ImageURL        string
	RoundNumber     int
	CreatedAt       time.Time
	PlayerGenerated bool
	PlayerID        string
}

type PlayerAnswer struct {
	PlayerID     string
	ConnectionID string
	Username     string
	Guess        string
	IsGambling   bool
	Score        int
	BonusPoints  int
	Reason       string
	SubmittedAt  time.Time
}

type RoundResults struct {
	RoundNumber int
	Theme       string
	Question    Question
	Answers     []PlayerAnswer
}

type Gamble struct {
	PlayerID  string
	Choice    string
	Threshold int
}

type GambleOutcome struct {
	PlayerID  string
	Choice    string
	Threshold int
	Aggregate int
	Won       bool
	Payout    int
}

type PlayerResult struct {
	PlayerID   string
	Username   string
	Avatar     string
	FinalScore int
}

type Results struct {
	PlayerResults []PlayerResult
	TotalRounds   int
	WasCompleted  bool
	EndedAt       time.Time
}
