package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/dasmlab/linguaflow/pkg/config"
	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	"github.com/dasmlab/linguaflow/pkg/notify"
	linguaflowv1 "github.com/dasmlab/linguaflow/pkg/rpc/v1"
	"github.com/dasmlab/linguaflow/pkg/server"
	"github.com/dasmlab/linguaflow/pkg/service"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/settings"
	"github.com/dasmlab/linguaflow/pkg/translate"
	"github.com/dasmlab/linguaflow/pkg/voice"
)

const shutdownTimeout = 30 * time.Second

func newLogger(cfg config.LoggerConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func loadCatalog(path string) (*language.Catalog, error) {
	if path == "" {
		return language.DefaultCatalog(), nil
	}
	return language.LoadCatalogFile(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	logger := newLogger(cfg.Logger)

	logger.WithFields(logrus.Fields{
		"version":     version,
		"grpc_port":   cfg.GRPC.Port,
		"http_port":   cfg.HTTP.Port,
		"mt_engine":   cfg.MT.Engine,
		"mt_url":      cfg.MT.URL,
		"history":     cfg.History.Backend,
		"settings":    cfg.Settings.Backend,
		"detector":    cfg.Language.Detector,
		"voice":       cfg.Voice.Engine,
		"log_level":   logger.GetLevel().String(),
		"max_chars":   cfg.Session.MaxChars,
		"debounce_ms": cfg.Session.Debounce.Milliseconds(),
	}).Info("Starting LinguaFlow server")

	catalog, err := loadCatalog(cfg.Language.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load language catalog: %w", err)
	}
	detectorEngine, err := language.ParseEngine(cfg.Language.Detector)
	if err != nil {
		return err
	}
	detector, err := language.NewLanguageDetector(detectorEngine, catalog)
	if err != nil {
		return err
	}

	engineType, err := translate.ParseEngineType(cfg.MT.Engine)
	if err != nil {
		return err
	}
	codes := make([]string, 0, catalog.Len())
	for _, r := range catalog.All() {
		codes = append(codes, r.Code)
	}
	translator, err := translate.NewTranslator(translate.Config{
		Engine:      engineType,
		BaseURL:     cfg.MT.URL,
		APIKey:      cfg.MT.APIKey,
		Timeout:     cfg.MT.Timeout,
		MockLatency: cfg.MT.MockLatency,
		Languages:   codes,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 10*time.Second)
	logger.Info("Checking translator health...")
	if err := translator.CheckHealth(healthCtx); err != nil {
		logger.WithError(err).Warn("Translator health check failed, but continuing anyway")
		logger.Warn("Server will start, but translation requests may fail until translator is ready")
	} else {
		logger.Info("Translator health check passed")
	}
	cancelHealth()

	client := translate.NewClient(translator, engineType, cfg.MT.ChunkRunes, logger)

	historyBackend, err := history.ParseBackend(cfg.History.Backend)
	if err != nil {
		return err
	}
	hist, err := history.Open(historyBackend, cfg.History.Path, nil)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer hist.Close()

	prefs, err := settings.Open(cfg.Settings.Backend, cfg.Settings.Path, settings.Settings{})
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer prefs.Close()

	voiceKind, err := voice.ParseEngineKind(cfg.Voice.Engine)
	if err != nil {
		return err
	}
	recognition, synthesis, err := voice.NewEngines(voiceKind)
	if err != nil {
		return err
	}
	probe := voice.NewProbe(recognition, synthesis)
	avail := probe.Availability()
	logger.WithFields(logrus.Fields{
		"recognition": avail.Recognition,
		"synthesis":   avail.Synthesis,
	}).Info("Voice capabilities probed")

	registry := service.NewRegistry(session.Config{
		Catalog:     catalog,
		Detector:    detector,
		Client:      client,
		History:     hist,
		Recognition: recognition,
		Synthesis:   synthesis,
		Probe:       probe,
		Notifier:    notify.LogNotifier{Logger: logger},
		Logger:      logger,
		Debounce:    cfg.Session.Debounce,
		MaxChars:    cfg.Session.MaxChars,
		SourceLang:  cfg.Session.SourceLang,
		TargetLang:  cfg.Session.TargetLang,
	}, logger,
		service.WithHeartbeatInterval(cfg.Session.HeartbeatInterval),
		service.WithIdleTimeout(cfg.Session.IdleTimeout),
	)

	svc := service.NewTranslationService(service.Deps{
		Client:   client,
		Catalog:  catalog,
		Detector: detector,
		History:  hist,
		Settings: prefs,
		Sessions: registry,
		MaxChars: cfg.Session.MaxChars,
		Logger:   logger,
	})

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"port": cfg.GRPC.Port,
		}).Error("Failed to listen on port")
		return err
	}

	grpcServer := grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
		// Clients ping every 30s; allow down to 15s so they never see "too many pings".
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     5 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  30 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(service.UnaryMetricsInterceptor),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(linguaflowv1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	linguaflowv1.RegisterTranslatorServer(grpcServer, svc)

	httpServer := server.NewHTTPServer(svc, logger, server.Config{
		Port:           cfg.HTTP.Port,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("port", cfg.GRPC.Port).Info("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(httpServer.Start)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"heartbeat_interval": registry.HeartbeatInterval().String(),
			"idle_timeout":       registry.IdleTimeout().String(),
		}).Info("Started idle session cleanup")
		return registry.Run(gctx, registry.HeartbeatInterval())
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.WithField("open_sessions", registry.Len()).Debug("Session metrics")
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")
		return shutdown(logger, grpcServer, healthServer, httpServer, registry)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("Server error")
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func shutdown(logger *logrus.Logger, grpcServer *grpc.Server, healthServer *health.Server, httpServer *server.HTTPServer, registry *service.Registry) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	healthServer.Shutdown()
	// Closing the sessions ends their event streams so HTTP shutdown can finish.
	registry.CloseAll()

	var errs []error
	if err := httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		logger.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		logger.Warn("Graceful shutdown timeout, forcing stop...")
		grpcServer.Stop()
	}
	return errors.Join(errs...)
}
