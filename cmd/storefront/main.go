// Package main runs the ShopEase storefront API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/shopease/internal/app"
	"github.com/abgdnv/shopease/internal/config"
	"github.com/abgdnv/shopease/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/shopease/pkg/config"
	"github.com/abgdnv/shopease/pkg/config/configloader"
	"github.com/abgdnv/shopease/pkg/kafka"
	"github.com/abgdnv/shopease/pkg/kv"
	"github.com/abgdnv/shopease/pkg/messaging"
	"github.com/abgdnv/shopease/pkg/nats"
	"github.com/abgdnv/shopease/pkg/server"
	"github.com/abgdnv/shopease/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects storage and the event broker, and
// serves HTTP, pprof and the session sweeper until ctx is canceled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	shutdownTracer, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to create tracer provider: %w", err)
	}
	defer shutdown(logger, "tracer provider", cfg.Shutdown.Timeout, shutdownTracer)

	shutdownMeter, err := telemetry.NewMeterProvider(serviceName, reg)
	if err != nil {
		return fmt.Errorf("failed to create meter provider: %w", err)
	}
	defer shutdown(logger, "meter provider", cfg.Shutdown.Timeout, shutdownMeter)

	storage, closeStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create cart storage: %w", err)
	}
	defer closeStorage()
	logger.Info("Cart storage ready", slog.String("driver", cfg.Storage.Driver))

	publisher, closePublisher, err := newPublisher(ctx, cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer closePublisher()
	logger.Info("Event publisher ready", slog.String("driver", cfg.Events.Driver))

	deps, err := app.SetupDependencies(cfg, storage, publisher, reg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up application: %w", err)
	}
	defer deps.Sessions.Close(context.Background())

	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gCtx, httpServer, cfg.Shutdown.Timeout, logger)
	})
	g.Go(func() error {
		return deps.Sessions.Run(gCtx)
	})
	if cfg.PProf.Enabled {
		g.Go(func() error {
			return server.Serve(gCtx, pprofServer, cfg.Shutdown.Timeout, logger.With("server", "pprof"))
		})
	} else {
		logger.Info("Pprof server is disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newStorage opens the configured cart storage backend.
func newStorage(ctx context.Context, cfg pkgconfig.StorageConfig) (kv.Store, func(), error) {
	switch cfg.Driver {
	case pkgconfig.StorageDriverMemory:
		return kv.NewMemory(), func() {}, nil
	case pkgconfig.StorageDriverFile:
		store, err := kv.NewFile(cfg.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case pkgconfig.StorageDriverRedis:
		connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := kv.NewRedisClient(connCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Error("Failed to close redis client", slog.String("error", err.Error()))
			}
		}
		return kv.NewRedis(client, cfg.Redis.TTL), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

// newPublisher connects the configured broker for handoff events.
func newPublisher(ctx context.Context, cfg config.EventsConfig) (messaging.Publisher, func(), error) {
	switch cfg.Driver {
	case config.EventsDriverNone, "":
		return messaging.NopPublisher{}, func() {}, nil
	case config.EventsDriverNATS:
		js, nc, err := nats.Connect(cfg.NATS.Url, serviceName, cfg.NATS.Timeout, slog.Default())
		if err != nil {
			return nil, nil, err
		}
		if err := nats.EnsureStream(ctx, js, cfg.NATS.Stream, messaging.OrdersHandedOffSubject); err != nil {
			nc.Close()
			return nil, nil, err
		}
		closeFn := func() {
			if err := nc.Drain(); err != nil {
				slog.Error("Failed to drain NATS connection", slog.String("error", err.Error()))
			}
		}
		return nats.NewNatsPublisher(js), closeFn, nil
	case config.EventsDriverKafka:
		publisher := kafka.NewKafkaPublisher(kafka.NewWriter(cfg.Kafka.BrokerList(), cfg.Kafka.Topic, cfg.Kafka.WriteTimeout))
		closeFn := func() {
			if err := publisher.Close(); err != nil {
				slog.Error("Failed to close kafka writer", slog.String("error", err.Error()))
			}
		}
		return publisher, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown events driver: %q", cfg.Driver)
	}
}

func shutdown(logger *slog.Logger, name string, timeout time.Duration, fn telemetry.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("Failed to shut down "+name, slog.String("error", err.Error()))
	}
}
