package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-runner/game/codec"
	"github.com/wricardo/maze-runner/game/engine"
	"github.com/wricardo/maze-runner/game/library"
)

// errInvalidMaps is returned by validate when at least one map fails.
var errInvalidMaps = errors.New("one or more maps are invalid")

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "carve a new maze and write it to a map file",
		ArgsUsage: "[output]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: 21, Usage: "maze width (even values are reduced by one)"},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: 21, Usage: "maze height (even values are reduced by one)"},
			&cli.Uint64Flag{Name: "seed", Aliases: []string{"s"}, Usage: "generator seed (random when omitted)"},
			&cli.BoolFlag{Name: "solve", Usage: "overlay the shortest route before saving"},
			&cli.BoolFlag{Name: "print", Aliases: []string{"p"}, Usage: "print the maze"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			width, height := int(cmd.Int("width")), int(cmd.Int("height"))
			if err := engine.ValidateDimensions(width, height); err != nil {
				return err
			}

			seed := uint64(cmd.Uint64("seed"))
			if !cmd.IsSet("seed") {
				seed = rand.Uint64()
			}

			grid, err := engine.NewGrid(width, height)
			if err != nil {
				return err
			}
			engine.NewSeededGenerator(seed).Generate(grid)
			logrus.WithFields(logrus.Fields{
				"width":  grid.Width(),
				"height": grid.Height(),
				"seed":   seed,
			}).Debug("maze generated")

			if cmd.Bool("solve") {
				route, err := engine.Solve(grid)
				if err != nil {
					return err
				}
				logrus.WithField("length", len(route)).Debug("maze solved")
			}

			w := out(cmd)
			if path := cmd.Args().First(); path != "" {
				if err := codec.Save(grid, path); err != nil {
					return err
				}
				fmt.Fprintf(w, "wrote %dx%d maze (seed %d) to %s\n", grid.Width(), grid.Height(), seed, path)
			} else if !cmd.Bool("print") {
				return fmt.Errorf("generate: give an output path or --print")
			}

			if cmd.Bool("print") {
				fmt.Fprintln(w, grid.String())
			}
			return nil
		},
	}
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "mark the shortest route through a map file",
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the solved map here instead of overwriting the input"},
			&cli.BoolFlag{Name: "print", Aliases: []string{"p"}, Usage: "print the solved maze"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := requireArg(cmd, "input")
			if err != nil {
				return err
			}
			grid, err := codec.Load(in)
			if err != nil {
				return err
			}
			route, err := engine.Solve(grid)
			if err != nil {
				return fmt.Errorf("solve %s: %w", in, err)
			}

			dest := cmd.String("out")
			if dest == "" {
				dest = in
			}
			if err := codec.Save(grid, dest); err != nil {
				return err
			}

			w := out(cmd)
			fmt.Fprintf(w, "route of %d cells written to %s\n", len(route), dest)
			if cmd.Bool("print") {
				fmt.Fprintln(w, grid.String())
			}
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print a map file as text",
		ArgsUsage: "<input>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := requireArg(cmd, "input")
			if err != nil {
				return err
			}
			grid, err := codec.Load(in)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), grid.String())
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check that map files hold usable mazes",
		ArgsUsage: "<input>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print reports as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("validate: missing input argument")
			}

			w := out(cmd)
			failed := 0
			reports := make(map[string]*engine.ValidationReport, len(paths))
			for _, path := range paths {
				grid, err := codec.Load(path)
				if err != nil {
					logrus.WithError(err).WithField("path", path).Warn("cannot load map")
					failed++
					continue
				}
				report := engine.Validate(grid)
				reports[path] = report
				if !report.Valid {
					failed++
				}
				if !cmd.Bool("json") {
					printReport(w, path, report)
				}
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidMaps, failed, len(paths))
			}
			return nil
		},
	}
}

func printReport(w io.Writer, path string, r *engine.ValidationReport) {
	status := "OK"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "%s: %s (%dx%d, %d open, %d reachable, perfect=%t)\n",
		path, status, r.Width, r.Height, r.OpenCells, r.ReachableCells, r.Perfect)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list the maps in a maps directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "maps",
				Usage:   "maps directory",
				Sources: cli.EnvVars("MAPS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lib, err := library.NewLibrary(cmd.String("dir"))
			if err != nil {
				return err
			}
			maps, err := lib.List()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tSOLVED\tBYTES\tMODIFIED")
			for _, m := range maps {
				fmt.Fprintf(tw, "%s\t%dx%d\t%t\t%d\t%s\n",
					m.Name, m.Width, m.Height, m.Solved, m.SizeBytes, m.ModifiedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}
