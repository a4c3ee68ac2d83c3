package manager

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"snake-console/game/types"
)

// State is the top-level game mode
type State int

const (
	Menu State = iota
	Playing
	GameOver
)

func (s State) String() string {
	switch s {
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case GameOver:
		return "game_over"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is how a session ended
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCrashed
	OutcomeWon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCrashed:
		return "crashed"
	case OutcomeWon:
		return "won"
	}
	return "none"
}

// ErrInvalidTransition is returned for a state change outside the allowed graph
var ErrInvalidTransition = errors.New("invalid state transition")

var validTransitions = map[State][]State{
	Menu:     {Playing},
	Playing:  {GameOver},
	GameOver: {Menu},
}

// StateManager owns the game status and the in-memory score bookkeeping.
// Scores live only for the process; nothing is written to disk.
type StateManager struct {
	state       State
	sessionID   string
	score       int
	lastScore   int
	highScore   int
	gamesPlayed int
	lastOutcome Outcome
	log         zerolog.Logger
}

func NewStateManager(log zerolog.Logger) *StateManager {
	return &StateManager{
		state: Menu,
		log:   log,
	}
}

func (sm *StateManager) State() State {
	return sm.state
}

// CanTransition checks if a state transition is valid
func (sm *StateManager) CanTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves to the given state if the transition graph allows it
func (sm *StateManager) Transition(to State) error {
	if !sm.CanTransition(sm.state, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", sm.state, to)
	}
	sm.log.Debug().Stringer("from", sm.state).Stringer("to", to).Msg("state transition")
	sm.state = to
	return nil
}

// StartSession enters Playing with a new session id and a zero score
func (sm *StateManager) StartSession() error {
	if err := sm.Transition(Playing); err != nil {
		return err
	}
	sm.sessionID = uuid.New().String()
	sm.score = 0
	sm.log.Info().Str("session", sm.sessionID).Msg("session started")
	return nil
}

// HandleMenuPress starts a session on a non-directional press while in Menu.
// Directional presses and presses in other states are ignored.
func (sm *StateManager) HandleMenuPress(b types.Button) (bool, error) {
	if sm.state != Menu {
		return false, nil
	}
	if _, directional := b.Direction(); directional {
		return false, nil
	}
	if err := sm.StartSession(); err != nil {
		return false, err
	}
	return true, nil
}

// AddPoint records one food eaten in the current session
func (sm *StateManager) AddPoint() {
	sm.score++
}

// Finish enters GameOver and folds the session score into the totals
func (sm *StateManager) Finish(outcome Outcome) error {
	if err := sm.Transition(GameOver); err != nil {
		return err
	}
	sm.lastScore = sm.score
	sm.lastOutcome = outcome
	sm.gamesPlayed++
	if sm.score > sm.highScore {
		sm.highScore = sm.score
	}
	sm.log.Info().
		Str("session", sm.sessionID).
		Stringer("outcome", outcome).
		Int("score", sm.score).
		Int("high_score", sm.highScore).
		Msg("session finished")
	return nil
}

// ReturnToMenu leaves GameOver
func (sm *StateManager) ReturnToMenu() error {
	return sm.Transition(Menu)
}

func (sm *StateManager) SessionID() string    { return sm.sessionID }
func (sm *StateManager) Score() int           { return sm.score }
func (sm *StateManager) LastScore() int       { return sm.lastScore }
func (sm *StateManager) HighScore() int       { return sm.highScore }
func (sm *StateManager) GamesPlayed() int     { return sm.gamesPlayed }
func (sm *StateManager) LastOutcome() Outcome { return sm.lastOutcome }
