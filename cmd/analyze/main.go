// Command analyze prints quick, human-readable heuristics about maze
// configuration files: dimensions, open cells, dead ends, the shortest route
// to the goal and how far each pursuer starts from the player and the goal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/validate"
)

// PursuerReport describes one pursuer's starting situation
type PursuerReport struct {
	ID            string
	Start         engine.Position
	ToPlayerStart int // -1 when walled off
	ToGoal        int // -1 when walled off
}

// Report summarizes a maze
type Report struct {
	Name       string
	Width      int
	Height     int
	Walkable   int
	DeadEnds   int
	PathLength int // -1 when the goal is unreachable
	Pursuers   []PursuerReport

	// HeadStart is the nearest pursuer's distance to the goal minus the
	// player's. Negative means some pursuer can sit on the goal first.
	HeadStart    int
	HasHeadStart bool
	TickInterval int
	Greedy       float64
}

func analyze(config *engine.GameConfig) (*Report, error) {
	round, err := engine.CompileConfig(config)
	if err != nil {
		return nil, err
	}

	grid := round.Grid
	report := &Report{
		Name:         config.Name,
		Width:        grid.Width(),
		Height:       grid.Height(),
		Walkable:     grid.CountWalkable(),
		PathLength:   -1,
		TickInterval: int(round.TickInterval.Milliseconds()),
		Greedy:       round.GreedyProbability,
	}

	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			p := engine.Position{X: x, Y: y}
			if !grid.Walkable(p) {
				continue
			}
			exits := 0
			for _, d := range engine.AllDirections {
				if grid.Walkable(p.Add(d)) {
					exits++
				}
			}
			if exits == 1 {
				report.DeadEnds++
			}
		}
	}

	fromStart := validate.Distances(grid, round.Start)
	fromGoal := validate.Distances(grid, round.Goal)
	if d, ok := fromStart[round.Goal]; ok {
		report.PathLength = d
	}

	nearest := -1
	for _, pc := range round.Pursuers {
		pr := PursuerReport{ID: pc.ID, Start: pc.Start, ToPlayerStart: -1, ToGoal: -1}
		if d, ok := fromStart[pc.Start]; ok {
			pr.ToPlayerStart = d
		}
		if d, ok := fromGoal[pc.Start]; ok {
			pr.ToGoal = d
			if nearest == -1 || d < nearest {
				nearest = d
			}
		}
		report.Pursuers = append(report.Pursuers, pr)
	}
	sort.SliceStable(report.Pursuers, func(i, j int) bool {
		return report.Pursuers[i].ToPlayerStart < report.Pursuers[j].ToPlayerStart
	})

	if nearest >= 0 && report.PathLength >= 0 {
		report.HeadStart = nearest - report.PathLength
		report.HasHeadStart = true
	}
	return report, nil
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid: %d x %d, %d open cells, %d dead ends\n", r.Width, r.Height, r.Walkable, r.DeadEnds)
	fmt.Fprintf(w, "Tick: %dms, greedy %.2f\n", r.TickInterval, r.Greedy)

	if r.PathLength < 0 {
		fmt.Fprintln(w, "CRITICAL: goal is unreachable from the start")
	} else {
		fmt.Fprintf(w, "Shortest route to goal: %d moves\n", r.PathLength)
	}

	for _, p := range r.Pursuers {
		fmt.Fprintf(w, "  %-12s at (%d,%d): %s from player, %s from goal\n",
			p.ID, p.Start.X, p.Start.Y, steps(p.ToPlayerStart), steps(p.ToGoal))
	}

	if r.HasHeadStart {
		if r.HeadStart < 0 {
			fmt.Fprintf(w, "WARNING: a pursuer can reach the goal %d ticks before the player could\n", -r.HeadStart)
		} else {
			fmt.Fprintf(w, "Head start: %d\n", r.HeadStart)
		}
	}
}

func steps(d int) string {
	if d < 0 {
		return "unreachable"
	}
	return fmt.Sprintf("%d steps", d)
}

func run(w io.Writer, files []string) error {
	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))
		config, err := engine.LoadGameConfig(file)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		report, err := analyze(config)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		printReport(w, report)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print maze heuristics for configuration files",
		ArgsUsage: "[config.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				matches, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return err
				}
				sort.Strings(matches)
				files = matches
			}
			if len(files) == 0 {
				return cli.Exit("no configuration files found", 1)
			}
			return run(os.Stdout, files)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
