package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/eiiot/amtraker-v3/config"
	"github.com/eiiot/amtraker-v3/converter"
	"github.com/eiiot/amtraker-v3/cron"
	"github.com/eiiot/amtraker-v3/feed"
	"github.com/eiiot/amtraker-v3/refdata"
	"github.com/eiiot/amtraker-v3/server"
	"github.com/eiiot/amtraker-v3/store"
	"github.com/eiiot/amtraker-v3/updater"
)

func main() {
	if os.Getenv("AMTRAKER_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("AMTRAKER_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "amtraker",
		Description: "Ingests the encrypted Amtrak feeds and serves the normalized dataset over HTTP",

		Commands: []*cli.Command{
			runCommand(),
			fetchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Refresh the feeds on a schedule and serve the API",
		Action: func(*cli.Context) error {
			if err := config.LoadAppConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg := config.Config

			ref, err := refdata.New()
			if err != nil {
				return err
			}

			st := store.New()
			switch cfg.Snapshot.Backend {
			case "file":
				st.SetSink(store.NewFileSink(cfg.Snapshot.Path))
			case "redis":
				st.SetSink(store.NewRedisSink(cfg.Snapshot.Redis.Address, cfg.Snapshot.Redis.Key))
			}

			client := feed.NewClient(time.Duration(cfg.Feeds.TimeoutMS) * time.Millisecond)
			upd := updater.New(st, client, converter.New(ref), cfg.Feeds.TrainsURL, cfg.Feeds.StationsURL)

			sched := cron.NewScheduler()
			refresh := upd.Job(context.Background())
			if err := sched.Add(cfg.Refresh.Schedule, refresh); err != nil {
				return err
			}

			go refresh()
			sched.Start()

			app := server.Setup(st)
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					log.Fatal().Err(err).Msg("Server error")
				}
			}()
			log.Info().Str("addr", addr).Str("schedule", cfg.Refresh.Schedule).Msg("Amtraker running")

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			<-sigs

			log.Info().Msg("Shutdown signal received")
			sched.Stop()
			return app.ShutdownWithTimeout(10 * time.Second)
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch and decrypt one feed, printing its JSON to stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "feed",
				Value: "trains",
				Usage: "trains|stations",
			},
		},
		Action: func(c *cli.Context) error {
			if err := config.LoadAppConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg := config.Config

			url := cfg.Feeds.TrainsURL
			if c.String("feed") == "stations" {
				url = cfg.Feeds.StationsURL
			}

			client := feed.NewClient(time.Duration(cfg.Feeds.TimeoutMS) * time.Millisecond)
			doc, err := client.FetchDecrypted(context.Background(), url)
			if err != nil {
				return err
			}
			fmt.Println(string(doc))
			return nil
		},
	}
}
