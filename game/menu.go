package game

import (
	"fmt"

	"github.com/pkg/errors"

	"snake-console/game/display"
	"snake-console/game/manager"
	"snake-console/game/types"
)

const (
	TitleText  = "SNAKE"
	PromptText = "press any other key to start"
)

// drawMenu clears the backdrop and draws the static menu once per Menu entry
func (g *Game) drawMenu() error {
	if err := display.Clear(g.sink, g.palette.Background); err != nil {
		return err
	}

	if err := g.sink.DrawText(TitleText, 135, 50, g.palette.Text); err != nil {
		return errors.Wrap(err, "draw title")
	}

	// A short snake chasing a piece of food
	row := 9
	for col := 11; col <= 17; col++ {
		if err := display.FillCell(g.sink, types.CellPoint(col, row), g.palette.Snake); err != nil {
			return err
		}
	}
	if err := display.FillCell(g.sink, types.CellPoint(20, row), g.palette.Food); err != nil {
		return err
	}

	if err := g.sink.DrawText(PromptText, 60, 140, g.palette.Text); err != nil {
		return errors.Wrap(err, "draw prompt")
	}

	if g.status.GamesPlayed() > 0 {
		scores := fmt.Sprintf("last %d  best %d", g.status.LastScore(), g.status.HighScore())
		if err := g.sink.DrawText(scores, 100, 180, g.palette.Text); err != nil {
			return errors.Wrap(err, "draw scores")
		}
	}
	return nil
}

// drawGameOver overlays the result on the final frame of the session
func (g *Game) drawGameOver(outcome manager.Outcome) error {
	banner := "GAME OVER"
	if outcome == manager.OutcomeWon {
		banner = "YOU WIN"
	}
	if err := g.sink.DrawText(banner, 125, 100, g.palette.Text); err != nil {
		return errors.Wrap(err, "draw game over")
	}
	score := fmt.Sprintf("score %d", g.status.LastScore())
	if err := g.sink.DrawText(score, 130, 120, g.palette.Text); err != nil {
		return errors.Wrap(err, "draw final score")
	}
	return nil
}
