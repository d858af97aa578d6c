package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"FinSignal/internal/usecase"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	"FinSignal/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *logger.Logger
	monitor     *usecase.Monitor
	relay       *usecase.PriceRelay
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance. A nil relay disables live trade updates.
func New(cfg *config.Config, l *logger.Logger, monitor *usecase.Monitor, relay *usecase.PriceRelay, h xhttp.Handler) *App {
	if l == nil {
		l = logger.Nop()
	}
	return &App{
		cfg:         cfg,
		log:         l,
		monitor:     monitor,
		relay:       relay,
		httpHandler: h,
	}
}

// RunOnce runs a single monitor iteration and returns.
func (a *App) RunOnce(ctx context.Context) error {
	return a.monitor.Run(ctx, true)
}

// Run starts the HTTP server, the price relay and the monitor loop and blocks
// until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Server.Enabled && a.httpHandler != nil {
		metricsPath := ""
		if a.cfg.Metrics.Enabled {
			metricsPath = a.cfg.Metrics.Path
		}
		a.httpServer = xhttp.NewServer(a.httpHandler,
			xhttp.WithPort(a.cfg.Server.Port),
			xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
			xhttp.WithMetricsPath(metricsPath),
			xhttp.WithLogger(a.log),
		)
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", logger.Error(err))
			return err
		}
	}

	var wg sync.WaitGroup
	if a.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("price relay error", logger.Error(err))
			}
		}()
		a.log.Info("price relay started", logger.Strings("symbols", a.cfg.Finnhub.Symbols))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.monitor.Run(ctx, false); err != nil {
			a.log.Error("monitor error", logger.Error(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	wg.Wait()
	return a.shutdown()
}

// shutdown stops the HTTP server. Infrastructure clients are closed by the
// cleanup returned from the injector.
func (a *App) shutdown() error {
	if a.httpServer == nil {
		a.log.Info("shutdown complete")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
