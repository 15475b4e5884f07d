package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"seventvbot/internal/app"
	"seventvbot/internal/config"
)

func main() {
	a := cli.App{
		Name:  "seventvbot",
		Usage: "chat bot that swaps 7TV emote names for the emote",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "directory holding app.env",
				Value:   "./config",
				EnvVars: []string{"SEVENTVBOT_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level and enable platform client debugging",
			},
		},
		Action: run,
	}

	err := a.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(cctx *cli.Context) error {
	cfg, err := config.NewConfig(cctx.String("config"))
	if err != nil {
		return err
	}

	if cctx.Bool("debug") {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	return a.Run(cctx.Context)
}
