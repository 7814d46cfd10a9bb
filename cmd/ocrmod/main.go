package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theimperious1/OCRAutoModerator/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"gorm.io/plugin/opentelemetry/tracing"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "ocrmod",
		Usage:   "automod daemon which reads the text in submitted images and video",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"OCRMOD_LOG_LEVEL", "LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		checkRulesCmd,
		defaultConfigCmd,
		evaluateCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database for rule document history and processed submissions (sqlite or postgres)",
			Value:   "sqlite://data/ocrmod/automod.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.BoolFlag{
			Name:    "db-tracing",
			Usage:   "trace database queries with OpenTelemetry",
			EnvVars: []string{"OCRMOD_DB_TRACING"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for counters and caches; in-process stores are used if not set",
			EnvVars: []string{"OCRMOD_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:     "gateway-host",
			Usage:    "method, hostname, and port of the platform gateway service",
			Required: true,
			EnvVars:  []string{"OCRMOD_GATEWAY_HOST"},
		},
		&cli.StringFlag{
			Name:    "gateway-token",
			Usage:   "bearer token for the platform gateway service",
			EnvVars: []string{"OCRMOD_GATEWAY_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "gateway-rate-limit",
			Usage:   "max requests per second to the platform gateway",
			Value:   10,
			EnvVars: []string{"OCRMOD_GATEWAY_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:     "extractor-host",
			Usage:    "method, hostname, and port of the text recognition (OCR) service",
			Required: true,
			EnvVars:  []string{"OCRMOD_EXTRACTOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "bot-name",
			Usage:   "account name of the bot, used in messages to moderators",
			Value:   "OCRAutoModerator",
			EnvVars: []string{"OCRMOD_BOT_NAME"},
		},
		&cli.StringFlag{
			Name:    "contact",
			Usage:   "account name given as a contact when requests are rejected",
			EnvVars: []string{"OCRMOD_CONTACT"},
		},
		&cli.Int64Flag{
			Name:    "requests-per-hour",
			Usage:   "max rule update/reset requests per sender per hour (0 for no limit)",
			Value:   20,
			EnvVars: []string{"OCRMOD_REQUESTS_PER_HOUR"},
		},
		&cli.StringFlag{
			Name:    "sets-json-path",
			Usage:   "file path of JSON file containing static sets (eg, maintainers)",
			EnvVars: []string{"OCRMOD_SETS_JSON_PATH"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "full URL of slack webhook",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "nats-url",
			Usage:   "NATS server URL for publishing decision events",
			EnvVars: []string{"OCRMOD_NATS_URL"},
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "prefix for relative permalinks in comments and notifications",
			Value:   "https://www.reddit.com",
			EnvVars: []string{"OCRMOD_BASE_URL"},
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "how often to fetch new submissions",
			Value:   10 * time.Second,
			EnvVars: []string{"OCRMOD_POLL_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    "inbox-poll-interval",
			Usage:   "how often to check the inbox for invites and rule update requests",
			Value:   30 * time.Second,
			EnvVars: []string{"OCRMOD_INBOX_POLL_INTERVAL"},
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "max submissions fetched per poll",
			Value:   100,
			EnvVars: []string{"OCRMOD_BATCH_SIZE"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "number of submissions processed concurrently",
			Value:   4,
			EnvVars: []string{"OCRMOD_WORKERS"},
		},
		&cli.IntFlag{
			Name:    "quota-removals-per-day",
			Usage:   "per-community daily limit on removals; further removals are downgraded to reports (0 for no limit)",
			EnvVars: []string{"OCRMOD_QUOTA_REMOVALS_PER_DAY"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3999",
			EnvVars: []string{"OCRMOD_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"OCRMOD_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "bearer token required on admin HTTP routes",
			EnvVars: []string{"OCRMOD_ADMIN_TOKEN"},
		},
		&cli.BoolFlag{
			Name:    "readonly",
			Usage:   "evaluate submissions and record decisions, but don't act on them",
			EnvVars: []string{"OCRMOD_READONLY", "READONLY"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger := cliutil.ConfigLogger(cctx, os.Stdout)

		shutdownTracing := configOTEL("ocrmod")
		defer shutdownTracing()

		db, err := cliutil.SetupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"))
		if err != nil {
			return err
		}
		if cctx.Bool("db-tracing") {
			if err := db.Use(tracing.NewPlugin()); err != nil {
				return err
			}
		}

		srv, err := NewServer(
			db,
			Config{
				Logger:              logger,
				RedisURL:            cctx.String("redis-url"),
				GatewayHost:         cctx.String("gateway-host"),
				GatewayToken:        cctx.String("gateway-token"),
				GatewayRateLimit:    cctx.Int("gateway-rate-limit"),
				ExtractorHost:       cctx.String("extractor-host"),
				BotName:             cctx.String("bot-name"),
				Contact:             cctx.String("contact"),
				RequestsPerHour:     cctx.Int64("requests-per-hour"),
				SetsFileJSON:        cctx.String("sets-json-path"),
				SlackWebhookURL:     cctx.String("slack-webhook-url"),
				NATSURL:             cctx.String("nats-url"),
				BaseURL:             cctx.String("base-url"),
				PollInterval:        cctx.Duration("poll-interval"),
				InboxPollInterval:   cctx.Duration("inbox-poll-interval"),
				BatchSize:           cctx.Int("batch-size"),
				Workers:             cctx.Int("workers"),
				QuotaRemovalsPerDay: cctx.Int("quota-removals-per-day"),
				AdminToken:          cctx.String("admin-token"),
				ReadOnly:            cctx.Bool("readonly"),
			},
		)
		if err != nil {
			return err
		}
		defer srv.Close()

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		go func() {
			if err := srv.RunAdmin(cctx.String("bind")); err != nil {
				slog.Error("admin HTTP server shutting down unexpectedly", "err", err)
			}
		}()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run automod service: %w", err)
		}
		return nil
	},
}
