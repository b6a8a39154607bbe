package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CryptoLiq/pkg/config"
	xhttp "CryptoLiq/pkg/http"
	pkgkafka "CryptoLiq/pkg/kafka"
	applogger "CryptoLiq/pkg/logger"
)

// Closer is a resource released on shutdown, after traffic has stopped.
type Closer struct {
	Name string
	io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	handlers   []pkgkafka.MessageHandler
	closers    []Closer
}

// New creates a new App instance with all dependencies. consumer may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	closers ...Closer,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		consumer:   consumer,
		handlers:   handlers,
		closers:    closers,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts serving and blocks until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.start(); err != nil {
		a.shutdown()
		return err
	}
	<-ctx.Done()
	a.l.Info("shutdown signal received")
	a.shutdown()
	return nil
}

func (a *App) start() error {
	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		for _, h := range a.handlers {
			a.l.Info("kafka consumer subscribed", applogger.String("topic", h.Topic()))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// shutdown stops intake first (HTTP, then Kafka), then releases resources
// in the order they were given.
func (a *App) shutdown() {
	a.l.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil && len(a.handlers) > 0 {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for _, c := range a.closers {
		if c.Closer == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
}
