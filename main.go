/* main.go
 * The "main" method for running the fighter records service. Serves the HTTP api and, when enabled, the discord bot
 * Usage: go run . -addr=":8080" -bot="true" -log-level="debug"
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fight-records/api/api"
	"fight-records/api/external"
	"fight-records/api/notify"
	"fight-records/bot"
	"fight-records/config"
	"fight-records/pkg/logger"
	"fight-records/pkg/metrics"
	"fight-records/web"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(context.Background())
	if err != nil {
		return err
	}

	//Flags override the loaded config
	addrPtr := flag.String("addr", cfg.Addr, "HTTP listen address, e.g. :8080")
	botPtr := flag.String("bot", fmt.Sprint(cfg.BotEnabled), "Run the discord bot: takes true or false as argument")
	levelPtr := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	yearPtr := flag.Int("year", cfg.DefaultYear, "Default year for runs that do not name one, 0 for the current year")
	flag.Parse()

	if err := applyFlags(cfg, *addrPtr, *botPtr, *levelPtr, *yearPtr); err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewManager()
	a, err := api.NewAPI(ctx, cfg.MongoDB, cfg.MongoURI, buildOptions(cfg, m)...)
	if err != nil {
		return fmt.Errorf("failed to initialize API: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Error(closeCtx, "api_close_failed", logger.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.Start(gctx, web.Config{
			Addr:        cfg.Addr,
			API:         a,
			Metrics:     m,
			DefaultBody: cfg.DefaultBody,
			DefaultYear: cfg.Year(),
		})
	})

	if cfg.BotEnabled {
		b, err := bot.NewBot(bot.Config{
			Token:           cfg.DiscordToken,
			API:             a,
			SanctioningBody: cfg.DefaultBody,
			Year:            cfg.Year(),
			AdminIDs:        cfg.AdminIDs(),
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			return b.Run(gctx)
		})
	}

	log.Info(ctx, "service_started", logger.String("addr", cfg.Addr), logger.String("db", cfg.MongoDB))
	return g.Wait()
}

// applyFlags copies the command line overrides onto cfg and re-validates it
// Preconditions: Receives the loaded config and the raw flag values
// Postconditions: cfg holds the overrides, or an error is returned if a flag is invalid
func applyFlags(cfg *config.Config, addr, botFlag, level string, year int) error {
	enabled, err := convertStrToBool(botFlag)
	if err != nil {
		return fmt.Errorf("invalid \"bot\" flag %q. Should be true or false", botFlag)
	}
	cfg.Addr = addr
	cfg.BotEnabled = enabled
	cfg.LogLevel = level
	cfg.DefaultYear = year
	return cfg.Validate()
}

// buildOptions wires the feed client, notifier, metrics and write limits into api options
func buildOptions(cfg *config.Config, m *metrics.Manager) []api.Option {
	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.ResendAPIKey != "" && len(cfg.NotifyRecipients()) > 0 {
		notifier = notify.NewResendNotifier(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.NotifyRecipients())
	}

	return []api.Option{
		api.WithFeed(external.NewClient(cfg.FeedUserAgent, cfg.FeedRequestsPerSecond)),
		api.WithNotifier(notifier),
		api.WithMetrics(m),
		api.WithDisciplines(cfg.DisciplineDefaults()),
		api.WithWriteConcurrency(cfg.WriteConcurrency),
		api.WithWritesPerSecond(cfg.WritesPerSecond),
	}
}
