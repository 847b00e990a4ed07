package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/world-explorer/internal/config"
	"github.com/jrsteele09/world-explorer/internal/logging"
	"github.com/jrsteele09/world-explorer/server"
)

func main() {
	c := config.New()
	log := logging.Setup(c.GetEnv(), c.GetLogLevel())
	if err := run(c, log); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config, log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	displayAppname(c.GetAppName())

	deps, err := wire(ctx, c, log)
	if err != nil {
		return err
	}
	defer deps.close()

	handler, err := server.New(c, deps.services, server.WithLogger(log), server.WithHealthCheck(deps.healthCheck))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv, log) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
