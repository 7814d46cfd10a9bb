package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/theimperious1/OCRAutoModerator/automod"
	"github.com/theimperious1/OCRAutoModerator/automod/cachestore"
	"github.com/theimperious1/OCRAutoModerator/automod/configsync"
	"github.com/theimperious1/OCRAutoModerator/automod/consumer"
	"github.com/theimperious1/OCRAutoModerator/automod/countstore"
	"github.com/theimperious1/OCRAutoModerator/automod/extract"
	"github.com/theimperious1/OCRAutoModerator/automod/notify"
	"github.com/theimperious1/OCRAutoModerator/automod/platform"
	"github.com/theimperious1/OCRAutoModerator/automod/seenstore"
	"github.com/theimperious1/OCRAutoModerator/automod/setstore"
	"github.com/theimperious1/OCRAutoModerator/automod/snapshot"
	"github.com/theimperious1/OCRAutoModerator/util"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Server struct {
	logger     *slog.Logger
	engine     *automod.Engine
	configs    *configsync.Manager
	platform   platform.Client
	submission *consumer.SubmissionConsumer
	inbox      *consumer.InboxConsumer
	history    *configsync.SQLDocumentStore
	rdb        *redis.Client
	nc         *nats.Conn
	adminToken string
	httpd      *http.Server
}

type Config struct {
	Logger              *slog.Logger
	RedisURL            string
	GatewayHost         string
	GatewayToken        string
	GatewayRateLimit    int
	ExtractorHost       string
	BotName             string
	Contact             string
	RequestsPerHour     int64
	SetsFileJSON        string
	SlackWebhookURL     string
	NATSURL             string
	BaseURL             string
	PollInterval        time.Duration
	InboxPollInterval   time.Duration
	BatchSize           int
	Workers             int
	QuotaRemovalsPerDay int
	AdminToken          string
	ReadOnly            bool
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	gateway := &platform.GatewayClient{
		Client: util.RobustHTTPClient(logger),
		Host:   config.GatewayHost,
		Token:  config.GatewayToken,
	}
	if config.GatewayRateLimit > 0 {
		gateway.Limiter = rate.NewLimiter(rate.Limit(config.GatewayRateLimit), 1)
	}

	sets := setstore.NewMemSetStore()
	if config.SetsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.SetsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %v", err)
		} else {
			logger.Info("loaded set config from JSON", "path", config.SetsFileJSON)
		}
	}

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var seen seenstore.SeenStore
	var rdb *redis.Client
	if config.RedisURL != "" {
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		// check redis connection
		_, err = rdb.Ping(context.TODO()).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}
		counters = countstore.NewRedisCountStoreFromClient(rdb)
		cache = cachestore.NewRedisCacheStoreFromClient(rdb, 30*time.Minute)
		seen = seenstore.NewRedisSeenStore(rdb, 7*24*time.Hour)
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
		sqlSeen, err := seenstore.NewSQLSeenStore(db)
		if err != nil {
			return nil, fmt.Errorf("initializing SQL seen store: %v", err)
		}
		seen = sqlSeen
	}

	history, err := configsync.NewSQLDocumentStore(db)
	if err != nil {
		return nil, fmt.Errorf("initializing rule document history: %v", err)
	}
	docs := &configsync.WikiDocumentStore{
		Wiki:   gateway,
		Mirror: history,
	}
	table := snapshot.NewTable()
	configs := configsync.NewManager(docs, table, logger)

	var notifiers notify.MultiNotifier
	if config.SlackWebhookURL != "" {
		logger.Info("configuring slack decision notifications")
		notifiers = append(notifiers, notify.NewSlackNotifier(config.SlackWebhookURL, logger))
	}
	var nc *nats.Conn
	if config.NATSURL != "" {
		natsConfig := notify.DefaultNATSConfig()
		natsConfig.URL = config.NATSURL
		pub, conn, err := notify.DialNATS(natsConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %v", err)
		}
		nc = conn
		notifiers = append(notifiers, pub)
	}

	eng := automod.Engine{
		Logger:    logger,
		Snapshots: table,
		Counters:  counters,
		Config: automod.EngineConfig{
			BaseURL:             config.BaseURL,
			QuotaRemovalsPerDay: config.QuotaRemovalsPerDay,
		},
	}
	if len(notifiers) > 0 {
		eng.Notifier = notifiers
	}

	extractor := &extract.CachingExtractor{
		Inner:  extract.NewHTTPExtractor(config.ExtractorHost, logger),
		Cache:  cache,
		Logger: logger,
	}

	s := &Server{
		logger:   logger,
		engine:   &eng,
		configs:  configs,
		platform: gateway,
		history:  history,
		rdb:      rdb,
		nc:       nc,
		submission: &consumer.SubmissionConsumer{
			Logger:       logger.With("consumer", "submissions"),
			Platform:     gateway,
			Engine:       &eng,
			Extractor:    extractor,
			Seen:         seen,
			Cache:        cache,
			PollInterval: config.PollInterval,
			BatchSize:    config.BatchSize,
			Workers:      config.Workers,
			ReadOnly:     config.ReadOnly,
		},
		inbox: &consumer.InboxConsumer{
			Logger:          logger.With("consumer", "inbox"),
			Platform:        gateway,
			Configs:         configs,
			Sets:            sets,
			BotName:         config.BotName,
			Contact:         config.Contact,
			PollInterval:    config.InboxPollInterval,
			RequestsPerHour: config.RequestsPerHour,
		},
		adminToken: config.AdminToken,
	}

	return s, nil
}

// Loads rules for every community the bot moderates, then runs the inbox and submission loops until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	communities, err := s.platform.Moderated(ctx)
	if err != nil {
		return fmt.Errorf("listing moderated communities: %w", err)
	}
	n := s.configs.JoinAll(ctx, communities, 8)
	s.logger.Info("loaded community rules", "communities", len(communities), "loaded", n)
	communitiesJoined.Set(float64(n))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.inbox.Run(gctx)
	})
	g.Go(func() error {
		return s.submission.Run(gctx)
	})
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		s.logger.Info("shutting down consumers")
		return nil
	}
	return err
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

// Releases network connections. Safe to call once Run has returned.
func (s *Server) Close() {
	if s.httpd != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpd.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
		}
	}
	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			s.logger.Error("failed to drain NATS connection", "err", err)
		}
	}
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Error("failed to close redis client", "err", err)
		}
	}
}
