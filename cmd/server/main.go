package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cropsense/internal/app"
	"cropsense/internal/server"
	"cropsense/internal/viewmodel"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to the YAML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{ConfigPath: *configPath, Verbose: *verbose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cropsense-server: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	httpServer := server.NewServer(
		a.Client,
		viewmodel.NewDashboard(a.Client, a.Logger),
		viewmodel.NewMarket(a.Client, a.Logger),
		a.Session,
		a.Logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(a.Config.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.Error("server stopped", zap.Error(err))
			a.Close()
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
