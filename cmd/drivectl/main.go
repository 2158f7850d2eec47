package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/drivectl/internal/behaviors"
	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/config"
	"github.com/jorge-barreto/drivectl/internal/docs"
	"github.com/jorge-barreto/drivectl/internal/logx"
	"github.com/jorge-barreto/drivectl/internal/runner"
	"github.com/jorge-barreto/drivectl/internal/scaffold"
	"github.com/jorge-barreto/drivectl/internal/scheduler"
	"github.com/jorge-barreto/drivectl/internal/simio"
	"github.com/jorge-barreto/drivectl/internal/state"
	"github.com/jorge-barreto/drivectl/internal/ux"
)

func main() {
	app := &cli.Command{
		Name:        "drivectl",
		Usage:       "Robot controller decision layer",
		Description: "Run 'drivectl docs' for documentation on bindings, macros, tasks, and more.",
		Commands: []*cli.Command{
			initCmd(),
			validateCmd(),
			bindingsCmd(),
			simCmd(),
			statusCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "robot.yaml", Usage: "Path to the robot config"}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write an example robot.yaml and input script",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "minimal", Usage: "Drive-only config"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir, cmd.Bool("minimal"))
		},
	}
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a config and its macro tasks",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			clk := &clock.Manual{}
			reg := behaviors.NewRegistry(clk, simio.NewPlant(clk), cfg.BehaviorTuning())
			compiled, err := config.Compile(cfg, reg)
			if err != nil {
				return err
			}
			if _, err := scheduler.New(compiled.Layer, clk, logx.Nop(), compiled.Macros); err != nil {
				return err
			}
			b := cfg.Bindings()
			fmt.Printf("%s✓%s %s: %d shifts, %d digital, %d analog, %d angles, %d macros (tick %s)\n",
				ux.Green, ux.Reset, cfg.Name, len(b.Shifts), len(b.Digital), len(b.Analog),
				len(b.Angles), len(b.Macros), cfg.TickPeriod)
			return nil
		},
	}
}

func bindingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "bindings",
		Usage: "Print the resolved binding table",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ux.RenderBindings(os.Stdout, cfg.Bindings())
			return nil
		},
	}
}

func simCmd() *cli.Command {
	return &cli.Command{
		Name:  "sim",
		Usage: "Run the controller against a scripted input timeline",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "script", Usage: "Input script (YAML); no script means idle sticks"},
			&cli.IntFlag{Name: "ticks", Usage: "Ticks to run (default: script length plus one second)"},
			&cli.StringFlag{Name: "watch", Usage: "Comma-separated operations to print (default: all)"},
			&cli.IntFlag{Name: "every", Value: 1, Usage: "Print every Nth frame"},
			&cli.BoolFlag{Name: "auto", Usage: "Start the configured autonomous routine on tick 0"},
			&cli.BoolFlag{Name: "realtime", Usage: "Tick on the wall clock instead of as fast as possible"},
			&cli.StringFlag{Name: "journal", Usage: "Directory to record the run in"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn, or error"},
			&cli.BoolFlag{Name: "json-log", Usage: "Log as JSON lines"},
		},
		Action: runSim,
	}
}

func runSim(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logx.New(cmd.String("log-level"), os.Stderr)
	if cmd.Bool("json-log") {
		log = logx.NewJSON(cmd.String("log-level"), os.Stderr)
	}

	script := &simio.Script{}
	if path := cmd.String("script"); path != "" {
		if script, err = simio.LoadScript(path); err != nil {
			return fmt.Errorf("loading script: %w", err)
		}
	}
	ticks := int(cmd.Int("ticks"))
	if ticks <= 0 {
		ticks = int(script.Last()) + int(time.Second/cfg.TickPeriod)
	}

	var watchNames []string
	if w := cmd.String("watch"); w != "" {
		for _, n := range strings.Split(w, ",") {
			watchNames = append(watchNames, strings.TrimSpace(n))
		}
	}
	watch, err := simio.ParseWatch(watchNames)
	if err != nil {
		return err
	}

	var clk clock.Clock = &clock.Manual{}
	if cmd.Bool("realtime") {
		clk = clock.NewMonotonic()
	}
	plant := simio.NewPlant(clk)
	reg := behaviors.NewRegistry(clk, plant, cfg.BehaviorTuning())
	compiled, err := config.Compile(cfg, reg)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(compiled.Layer, clk, log, compiled.Macros)
	if err != nil {
		return err
	}
	sched.OnFinish = func(ev scheduler.Event) {
		fmt.Println("  " + ux.TaskLine(ev.Name, ev.Owner, ev.Outcome.String(), ev.End-ev.Start))
	}

	player := simio.NewPlayer(script)
	r := &runner.Runner{
		Period:    cfg.TickPeriod,
		Scheduler: sched,
		Source:    player,
		Mechanisms: []runner.Mechanism{
			plant,
			&simio.Printer{W: os.Stdout, Clock: clk, Watch: watch, Every: int(cmd.Int("every"))},
		},
		Clock:      clk,
		Log:        log,
		BeforeTick: player.Advance,
	}

	routine := "none"
	if cmd.Bool("auto") {
		routine = compiled.RoutineName
		sched.Start("autonomous", compiled.Routine())
	}

	if dir := cmd.String("journal"); dir != "" {
		if err := journal(r, cfg, routine, dir); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ux.SimHeader(cfg.Name, routine, ticks, cfg.TickPeriod)
	if cmd.Bool("realtime") {
		ctx, cancel := context.WithTimeout(ctx, time.Duration(ticks)*cfg.TickPeriod)
		defer cancel()
		err = r.Run(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	} else {
		err = r.RunTicks(ctx, ticks)
	}
	st := r.Stats()
	ux.SimComplete(st.Ticks, st.Overruns, st.MaxTick)
	return err
}

// journal wires a fresh run journal into r and records the binding table.
// A previous run in dir is overwritten.
func journal(r *runner.Runner, cfg *config.Config, routine, dir string) error {
	if err := state.EnsureDir(dir); err != nil {
		return err
	}
	var table bytes.Buffer
	ux.RenderBindings(&table, cfg.Bindings())
	if err := state.WriteBindings(dir, table.String()); err != nil {
		return fmt.Errorf("writing bindings: %w", err)
	}

	st := state.New(cfg.Name, cfg.TickPeriod)
	st.Routine = routine
	r.State = st
	r.Timing = &state.Timing{}
	r.JournalDir = dir
	return nil
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the journal of the last recorded run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "journal", Value: "journal", Usage: "Journal directory"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("journal")
			st, err := state.Load(dir)
			if err != nil {
				return fmt.Errorf("loading state: %w", err)
			}
			if st.RunID == "" {
				return fmt.Errorf("no run recorded in %s", dir)
			}
			ux.RenderStatus(os.Stdout, st, dir)
			return nil
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "Print every topic"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("all") {
				fmt.Print(docs.Reference())
				return nil
			}
			name := cmd.Args().First()
			if name == "" {
				printTopics(os.Stdout)
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

func printTopics(w io.Writer) {
	fmt.Fprint(w, "\nAvailable topics:\n\n")
	for _, t := range docs.All() {
		fmt.Fprintf(w, "  %-14s %s\n", t.Name, t.Summary)
	}
	fmt.Fprintln(w, "\nRun 'drivectl docs <topic>' to read a topic.")
}
