// Command autoplay plays maze rounds against a running server through the
// REST API. Each attempt starts a fresh round and walks toward the goal
// while steering clear of the pursuers; it stops at the first win.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/crneirav-code/juegoBE/game/engine"
)

// Options bound a run of the player
type Options struct {
	MaxMoves    int
	MaxAttempts int
	Delay       time.Duration
	// Tick requests a pursuer tick after every move, for servers whose
	// sessions are not advanced by a clock
	Tick bool
}

// Player runs attempts until one is won
type Player struct {
	client   *Client
	strategy *EvasiveStrategy
	opts     Options
}

var errNoRoute = errors.New("no route to the goal")

// Play returns the final state of the last attempt and how many attempts
// were made
func (p *Player) Play(ctx context.Context) (*engine.GameState, int, error) {
	var state *engine.GameState
	attempt := 0

	for attempt < p.opts.MaxAttempts {
		attempt++

		var err error
		state, err = p.client.StartRound(ctx)
		if err != nil {
			return state, attempt, err
		}
		log.WithFields(log.Fields{
			"attempt": attempt,
			"round":   state.RoundID,
		}).Info("round started")

		state, err = p.playRound(ctx, state)
		if err != nil {
			return state, attempt, err
		}

		log.WithFields(log.Fields{
			"attempt": attempt,
			"outcome": state.Outcome,
			"moves":   state.Moves,
			"ticks":   state.Ticks,
		}).Info("attempt finished")

		if state.Outcome == engine.OutcomeWon {
			return state, attempt, nil
		}
	}

	return state, attempt, nil
}

func (p *Player) playRound(ctx context.Context, state *engine.GameState) (*engine.GameState, error) {
	for moves := 0; !state.Concluded() && moves < p.opts.MaxMoves; moves++ {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		direction := p.strategy.NextMove(state)
		if direction == engine.DirectionNone {
			return state, errNoRoute
		}

		result, err := p.client.Move(ctx, direction)
		if err != nil {
			return state, err
		}
		if result.GameState != nil {
			state = result.GameState
		}
		log.WithFields(log.Fields{
			"dir": direction,
			"ok":  result.Success,
			"pos": fmt.Sprintf("(%d,%d)", state.PlayerPos.X, state.PlayerPos.Y),
		}).Debug("move")

		if p.opts.Tick && !state.Concluded() {
			tick, err := p.client.Tick(ctx)
			if err != nil {
				return state, err
			}
			if tick.GameState != nil {
				state = tick.GameState
			}
		}

		if p.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return state, ctx.Err()
			case <-time.After(p.opts.Delay):
			}
		}
	}
	return state, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play maze rounds through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("API_URL")},
			&cli.StringFlag{Name: "config", Usage: "maze config for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "play in an existing session by ID"},
			&cli.IntFlag{Name: "max-moves", Value: 500, Usage: "maximum moves per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "maximum attempts before giving up"},
			&cli.IntFlag{Name: "margin", Value: 1, Usage: "distance kept from pursuers when possible"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.BoolFlag{Name: "tick", Usage: "request a pursuer tick after every move"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if cmd.Bool("v") {
				log.SetLevel(log.DebugLevel)
			}

			client := NewClient(cmd.String("url"))
			if id := cmd.String("continue"); id != "" {
				client.UseSession(id)
				log.WithField("session", id).Info("resuming session")
			} else {
				info, err := client.CreateSession(ctx, cmd.String("config"))
				if err != nil {
					return err
				}
				log.WithFields(log.Fields{
					"session": info.ID,
					"config":  info.ConfigName,
				}).Info("session created")
			}

			player := &Player{
				client:   client,
				strategy: &EvasiveStrategy{Margin: cmd.Int("margin")},
				opts: Options{
					MaxMoves:    cmd.Int("max-moves"),
					MaxAttempts: cmd.Int("max-attempts"),
					Delay:       cmd.Duration("delay"),
					Tick:        cmd.Bool("tick"),
				},
			}

			state, attempts, err := player.Play(ctx)
			if err != nil {
				return err
			}
			if state == nil || state.Outcome != engine.OutcomeWon {
				return cli.Exit(fmt.Sprintf("failed to win after %d attempts (session %s)", attempts, client.SessionID()), 1)
			}
			log.WithFields(log.Fields{
				"attempts": attempts,
				"moves":    state.Moves,
				"session":  client.SessionID(),
			}).Info("victory")
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
