package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/alittlebrighter/tristat/logger"
	"github.com/alittlebrighter/tristat/models"
	"github.com/alittlebrighter/tristat/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := &cli.Command{
		Name:  "status-monitor",
		Usage: "Log the status reports a thermostat publishes on NATS.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "nats-url",
				Value: nats.DefaultURL,
				Usage: "Url for NATS instance to connect to.",
			},
			&cli.StringFlag{
				Name:  "subject",
				Value: transport.DefaultStatusSubject,
				Usage: "Subject the thermostat publishes status lines on.",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
			},
		},
		Action: monitor,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func monitor(ctx context.Context, cmd *cli.Command) error {
	log := logger.New(cmd.String("log-level")).Named("monitor")
	defer log.Sync()

	url := cmd.String("nats-url")
	nc, err := nats.Connect(url, nats.Name("tristat status monitor"))
	if err != nil {
		return fmt.Errorf("could not connect to message bus: %w", err)
	}
	defer nc.Close()
	log.Infow("connected to NATS", "url", url)

	subject := cmd.String("subject")
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		report, err := models.ParseStatusReport(string(m.Data))
		if err != nil {
			log.Warnw("could not parse status report", "err", err)
			return
		}
		log.Infow("status",
			"mode", report.Mode,
			"temperature", report.Temperature,
			"setpoint", report.Setpoint,
		)
	})
	if err != nil {
		return fmt.Errorf("could not subscribe to %s: %w", subject, err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	log.Infow("stopping")
	return nil
}
