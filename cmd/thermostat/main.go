package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ghodss/yaml"
	"github.com/urfave/cli/v3"

	"github.com/alittlebrighter/tristat"
	"github.com/alittlebrighter/tristat/input"
	"github.com/alittlebrighter/tristat/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := &cli.Command{
		Name:  "thermostat",
		Usage: "Run the three-mode panel thermostat.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   thermostat.DefaultConfigPath,
				Usage:   "The configuration file for the thermostat.",
				Sources: cli.EnvVars("TRISTAT_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error).",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Run without GPIO: log the display and read button events from stdin.",
			},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:  "default-config",
				Usage: "Print the default configuration as YAML.",
				Action: func(_ context.Context, _ *cli.Command) error {
					dat, err := yaml.Marshal(thermostat.DefaultConfig())
					if err != nil {
						return err
					}
					_, err = os.Stdout.Write(dat)
					return err
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")

	config, err := thermostat.LoadConfig(cmd.String("config"))
	switch {
	case err == nil:
	case dryRun && errors.Is(err, fs.ErrNotExist):
		config = thermostat.DefaultConfig()
		config.Thermometer.Type = thermostat.ThermometerFixed
		config.Thermometer.Degrees = 22
	default:
		return err
	}
	if level := cmd.String("log-level"); level != "" {
		config.Log.Level = level
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(config.Log.Level)
	defer log.Sync()
	log.Infow("starting thermostat", "config", cmd.String("config"), "dryRun", dryRun)

	hw, err := setupHardware(config, dryRun, log)
	if err != nil {
		return err
	}
	defer hw.Close()

	stat := thermostat.New(hw.heat, hw.cool, hw.thermometer,
		thermostat.WithLogger(log),
		thermostat.WithPulsePeriod(config.Loop.PulsePeriod.Std()),
		thermostat.WithMaxErrors(config.Loop.MaxErrors),
	)
	scheduler := thermostat.NewScheduler(stat, hw.display, log)
	reporter := thermostat.NewReporter(stat, hw.transport, log)
	loop := thermostat.NewLoop(stat, scheduler, reporter, hw.display, config.Loop.Tick.Std(), log)
	dispatcher := thermostat.NewDispatcher(stat, log)

	events := make(chan input.Event)
	go hw.input(ctx, events)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx, events)
	}()

	loop.Run(ctx)
	wg.Wait()

	log.Infow("cleaning up, exiting")
	return nil
}
