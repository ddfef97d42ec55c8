package game

// roundPlan describes one round the session has to drive: who supplies the
// theme or prompt, who answers, and whether the actor may place a gamble.
type roundPlan struct {
	actor       Player
	answerers   []Player
	allowGamble bool
}

type gameMode interface {
	name() string
	usesPrompts() bool
	outerRounds(cfg Configuration, playerCount int) int
	plans(players []Player, outer int) []roundPlan
}

func modeFor(cfg Configuration) gameMode {
	if cfg.PromptMode {
		return promptMode{}
	}
	return classicMode{}
}

// classicMode runs one round per iteration: the acting player picks a theme
// from AI candidates and everyone answers, the actor included (the actual
// image prompt is AI-written, so the actor does not know it either).
type classicMode struct{}

func (classicMode) name() string      { return "classic" }
func (classicMode) usesPrompts() bool { return false }

func (classicMode) outerRounds(cfg Configuration, playerCount int) int {
	return cfg.TotalRounds
}

func (classicMode) plans(players []Player, outer int) []roundPlan {
	if len(players) == 0 {
		return nil
	}
	actor := players[outer%len(players)]
	answerers := make([]Player, len(players))
	copy(answerers, players)
	return []roundPlan{{actor: actor, answerers: answerers}}
}

// promptMode has every player author one image prompt per iteration, each
// producing a round the author sits out. With exactly two players this is
// the duel variant, where the author may gamble on the opponent's outcome.
type promptMode struct{}

func (promptMode) name() string      { return "prompt" }
func (promptMode) usesPrompts() bool { return true }

func (promptMode) outerRounds(cfg Configuration, playerCount int) int {
	if playerCount == 0 {
		return 0
	}
	return (cfg.TotalRounds + playerCount - 1) / playerCount
}

func (promptMode) plans(players []Player, outer int) []roundPlan {
	plans := make([]roundPlan, 0, len(players))
	for i, actor := range players {
		answerers := make([]Player, 0, len(players)-1)
		for j, p := range players {
			if j == i {
				continue
			}
			answerers = append(answerers, p)
		}
		plans = append(plans, roundPlan{
			actor:       actor,
			answerers:   answerers,
			allowGamble: len(players) == 2,
		})
	}
	return plans
}
