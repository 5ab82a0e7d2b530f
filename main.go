package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/linky-integration/cmd"
	"github.com/anicoll/linky-integration/internal/pkg/config"
)

//go:generate go tool oapi-codegen --config=./gen/config.yaml ./gen/api.yaml

func main() {
	// a missing .env is fine, flags and the environment still apply
	_ = config.LoadDotEnv()

	app := &cli.App{
		Name:   "linky-integration",
		Usage:  "expose a Linky TIC serial link to Home Assistant over MQTT",
		Action: cmd.LinkyCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "serial-port",
				EnvVars:  []string{"SERIAL_PORT"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "tic-mode",
				EnvVars: []string{"TIC_MODE"},
				Value:   string(config.TICModeHistoric),
			},
			&cli.BoolFlag{
				Name:    "real-time",
				EnvVars: []string{"REAL_TIME"},
				Value:   false,
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   10 * time.Second,
			},
			&cli.StringFlag{
				Name:    "entry-id",
				EnvVars: []string{"ENTRY_ID"},
				Value:   "linky",
			},
			&cli.StringFlag{
				Name:    "title",
				EnvVars: []string{"TITLE"},
				Value:   "Linky",
			},
			&cli.StringFlag{
				Name:     "mqtt-host",
				EnvVars:  []string{"MQTT_HOST"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "database-url",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "migrations-folder",
				EnvVars: []string{"MIGRATIONS_FOLDER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
