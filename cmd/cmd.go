package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/linky-integration/internal/pkg/config"
	"github.com/anicoll/linky-integration/internal/pkg/database"
	"github.com/anicoll/linky-integration/internal/pkg/database/migration"
	"github.com/anicoll/linky-integration/internal/pkg/entity"
	"github.com/anicoll/linky-integration/internal/pkg/mqtt"
	"github.com/anicoll/linky-integration/internal/pkg/publisher"
	"github.com/anicoll/linky-integration/internal/pkg/server"
	"github.com/anicoll/linky-integration/internal/pkg/tic"
	"github.com/anicoll/linky-integration/pkg/sockets"
)

const cleanupTimezone = "Europe/Paris"

func LinkyCommand(ctx *cli.Context) error {
	mode, err := config.ParseTICMode(ctx.String("tic-mode"))
	if err != nil {
		return err
	}
	cfg := &config.Config{
		SerialCfg: &config.SerialConfig{
			Port:         ctx.String("serial-port"),
			Mode:         mode,
			RealTime:     ctx.Bool("real-time"),
			PollInterval: ctx.Duration("poll-interval"),
		},
		MqttCfg: &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
		},
		DatabaseCfg: &config.DatabaseConfig{
			URL:              ctx.String("database-url"),
			MigrationsFolder: ctx.String("migrations-folder"),
		},
		EntryID:  ctx.String("entry-id"),
		Title:    ctx.String("title"),
		HTTPAddr: ctx.String("http-addr"),
		LogLevel: ctx.String("log-level"),
	}
	if err := config.ParseTunables(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	mqttSvc := mqtt.New(mqtt.NewClient(cfg.MqttCfg), cfg.MqttCfg, cfg.EntryID)
	if err := mqttSvc.Connect(); err != nil {
		return err
	}
	defer func() {
		if err := mqttSvc.Close(); err != nil {
			logger.Warn("failed to mark entities offline", zap.Error(err))
		}
	}()

	var db Database
	if cfg.DatabaseCfg.URL != "" {
		if cfg.DatabaseCfg.MigrationsFolder != "" {
			if err := migration.Migrate(cfg.DatabaseCfg.URL, cfg.DatabaseCfg.MigrationsFolder); err != nil {
				return err
			}
		}
		pg, err := database.NewDatabase(ctx.Context, cfg.DatabaseCfg.URL)
		if err != nil {
			return err
		}
		defer pg.Close()
		db = pg
	}

	return run(ctx.Context, cfg, tic.New(cfg.SerialCfg), mqttSvc, db)
}

func newLogger(level string) (*zap.Logger, error) {
	var err error
	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// run owns the reader, the entities and the optional HTTP API until ctx ends
// or one of them fails. db may be nil.
func run(ctx context.Context, cfg *config.Config, reader ReaderService, mqttSink Sink, db Database) error {
	logger := zap.L()
	if reader == nil {
		logger.Error("can not init sensors: failed to get the serial reader object", zap.String("title", cfg.Title))
		return entity.ErrUpstreamUnavailable
	}

	pub := publisher.New()
	hub := sockets.New(sockets.WithPingInterval(30*time.Second), sockets.WithPingMsg([]byte("ping")))
	defer hub.Close()
	if err := pub.RegisterPublisher("websocket", hub); err != nil {
		return err
	}
	if mqttSink != nil {
		if err := pub.RegisterPublisher("mqtt", mqttSink); err != nil {
			return err
		}
	}
	if db != nil {
		if err := pub.RegisterPublisher("postgres", db); err != nil {
			return err
		}
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return reader.Run(ctx)
	})

	eg.Go(func() error {
		entities, err := entity.Setup(ctx, cfg, reader, pub)
		if err != nil {
			return err
		}
		defer entities.Close()
		return entities.Poll(ctx, cfg.SerialCfg.PollInterval)
	})

	if db != nil {
		eg.Go(func() error {
			return cronDbCleanup(ctx, db, cfg.DatabaseCfg)
		})
	}

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Handler:      server.New(reader, pub, db, hub).Router(),
			Addr:         cfg.HTTPAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		eg.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := eg.Wait()
	logger.Info("stopped", zap.Error(err))
	return err
}

func cronDbCleanup(ctx context.Context, db Database, cfg *config.DatabaseConfig) error {
	cleanup := func() {
		removed, err := db.Cleanup(context.Background(), cfg.Retention)
		if err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			return
		}
		zap.L().Info("cleaned up database", zap.Int64("removed", removed))
	}
	cleanup()

	c := cron.New()
	if _, err := c.AddFunc("CRON_TZ="+cleanupTimezone+" "+cfg.CleanupSchedule, cleanup); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
