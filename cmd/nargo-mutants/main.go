package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/nargo-mutants/internal/config"
	"github.com/standardbeagle/nargo-mutants/internal/debug"
	"github.com/standardbeagle/nargo-mutants/internal/display"
	"github.com/standardbeagle/nargo-mutants/internal/pipeline"
	"github.com/standardbeagle/nargo-mutants/internal/process"
	"github.com/standardbeagle/nargo-mutants/internal/report"
	"github.com/standardbeagle/nargo-mutants/internal/version"
)

var printer = display.New(os.Stderr)

func main() {
	// Panics are programmer errors; external conditions must never
	// reach this handler.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:                   version.Tool,
		Usage:                  "Mutation testing for Noir circuit projects",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging on stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.SetEnabled(true)
			}
			return nil
		},
		Commands: []*cli.Command{
			scanCommand(ctx),
			listCommand(),
			runCommand(ctx),
			preflightCommand(ctx),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func projectFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "project",
		Aliases:  []string{"p"},
		Usage:    "Noir project directory (containing Nargo.toml)",
		Value:    ".",
		Required: false,
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Write machine-readable JSON to stdout",
	}
}

func outDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "out-dir",
		Usage: "Artifact directory (default: <project>/mutants.out)",
	}
}

// buildPipeline loads the effective configuration for the project and
// wires the production process runner.
func buildPipeline(projectDir string) (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, nil, err
	}
	runner := &process.ExecRunner{TailBytes: cfg.TailBytes}
	return pipeline.New(cfg, runner, printer), cfg, nil
}

func scanCommand(ctx context.Context) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Project overview and mutant count, no execution",
		Flags: []cli.Flag{
			projectFlag(),
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep watching the source tree and rescan on change",
			},
		},
		Action: func(c *cli.Context) error {
			pl, _, err := buildPipeline(c.String("project"))
			if err != nil {
				return operational(err)
			}
			if c.Bool("watch") {
				if err := pl.Watch(ctx, c.String("project")); err != nil {
					return operational(err)
				}
				return nil
			}
			info, err := pl.Scan(c.String("project"))
			if err != nil {
				return operational(err)
			}
			pl.PrintScan(info)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Write mutants.json and per-mutant diffs, no execution",
		Flags: []cli.Flag{projectFlag(), jsonFlag(), outDirFlag()},
		Action: func(c *cli.Context) error {
			pl, _, err := buildPipeline(c.String("project"))
			if err != nil {
				return operational(err)
			}
			info, outDir, err := pl.List(c.String("project"), pipeline.Options{
				OutDir: c.String("out-dir"),
			})
			if err != nil {
				return operational(err)
			}
			printer.Infof("%d mutants written to %s", len(info.Discovery.Mutants), outDir)
			if c.Bool("json") {
				if err := display.WriteJSON(os.Stdout, report.MutantsJSON(info.Discovery.Mutants)); err != nil {
					return operational(err)
				}
			}
			return nil
		},
	}
}

func runCommand(ctx context.Context) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the full mutation pipeline",
		Flags: []cli.Flag{
			projectFlag(),
			jsonFlag(),
			outDirFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Execute only the first N mutants after sorting",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Per-mutant timeout in seconds (0 = no limit)",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "fail-on-survivors",
				Usage: "Exit with status 2 when any mutant is missed",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging on stderr",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.SetEnabled(true)
			}
			pl, cfg, err := buildPipeline(c.String("project"))
			if err != nil {
				return operational(err)
			}
			if t := c.Int("timeout"); t >= 0 {
				cfg.TimeoutSeconds = t
			}

			res, runErr := pl.Run(ctx, c.String("project"), pipeline.Options{
				OutDir:          c.String("out-dir"),
				Limit:           c.Int("limit"),
				FailOnSurvivors: c.Bool("fail-on-survivors"),
			})

			// The machine document is written exactly once at exit,
			// including for a failed baseline where run.json exists.
			if c.Bool("json") && res != nil {
				if err := display.WriteJSON(os.Stdout, res.Run); err != nil {
					return operational(err)
				}
			}
			if runErr != nil {
				return operational(runErr)
			}
			if c.Bool("fail-on-survivors") && res.Summary.Missed > 0 {
				printer.Errorf("%d mutants survived", res.Summary.Missed)
				return cli.Exit("", 2)
			}
			return nil
		},
	}
}

func preflightCommand(ctx context.Context) *cli.Command {
	return &cli.Command{
		Name:  "preflight",
		Usage: "Baseline gate plus tool version diagnostics",
		Flags: []cli.Flag{projectFlag(), jsonFlag()},
		Action: func(c *cli.Context) error {
			pl, _, err := buildPipeline(c.String("project"))
			if err != nil {
				return operational(err)
			}
			info, err := pl.Preflight(ctx, c.String("project"))
			if err != nil {
				return operational(err)
			}
			if c.Bool("json") {
				if err := display.WriteJSON(os.Stdout, info); err != nil {
					return operational(err)
				}
			} else {
				pl.PrintPreflight(info)
			}
			if !info.BaselinePassed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// operational reports an error on the human stream and maps it to exit
// status 1.
func operational(err error) error {
	printer.Errorf("%v", err)
	return cli.Exit("", 1)
}
