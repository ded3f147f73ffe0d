package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ChartSignals/internal/handler/api"
	icache "ChartSignals/internal/service/cache"
	"ChartSignals/internal/usecase"
	pkgch "ChartSignals/pkg/clickhouse"
	"ChartSignals/pkg/config"
	xhttp "ChartSignals/pkg/http"
	pkgkafka "ChartSignals/pkg/kafka"
	applogger "ChartSignals/pkg/logger"
	"ChartSignals/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.BarCollector
	query       *usecase.SignalQuery
	consumer    *pkgkafka.Consumer
	kh          *usecase.KafkaBarsHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	log         *applogger.Logger
	logQueue    *queue.RedisQueue
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.BarCollector,
	query *usecase.SignalQuery,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		query:     query,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows tests to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	format := "json"
	if a.cfg.Environment == "development" {
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return err
	}
	a.log = l

	httpHandler := a.httpHandler
	if httpHandler == nil {
		se := api.NewSignalsEchoHandler(l, a.query, a.collector, a.cfg.Alpaca.Symbols)
		if a.cfg.Redis.Enabled {
			se.SetCache(icache.NewRedisCache(icache.RedisConfig{
				Addr:     a.cfg.Redis.Addr,
				Password: a.cfg.Redis.Password,
				DB:       a.cfg.Redis.DB,
			}))
		} else {
			se.SetCache(icache.NewTTLCache())
		}
		httpHandler = se
	}

	// Aggregated error logs ship through the redis queue when available.
	if a.cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		a.logQueue = queue.NewRedisPublisher(l, rdb)
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "error_logs",
			Publisher:      a.logQueue,
		})
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Alpaca.Symbols))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.log
	l.Info("shutting down...")

	// Stop collector (stream + pipeline)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Final archive flush and downstream close
	a.collector.Recorder().Close()

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Flush aggregated error logs last
	l.RemoveCollector()
	if a.logQueue != nil {
		if err := a.logQueue.Stop(shutdownCtx); err != nil {
			l.Warn("log queue stop error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
