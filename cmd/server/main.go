package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mapchat/relay/internal/account"
	"github.com/mapchat/relay/internal/observability"
	"github.com/mapchat/relay/internal/relay"
)

// Exit codes give meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapchat-relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()

	cfg, err := relay.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger := observability.InitLogger("mapchat-relay", cfg.LogLevel)

	hub := relay.NewHub(*cfg, logger)
	go hub.Run()

	store, err := account.Open(cfg.AccountDBPath)
	if err != nil {
		return exitConfig, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("closing account store")
		}
	}()

	issuer := account.NewTokenIssuer(cfg.TokenSecret, cfg.TokenDuration)
	accounts := account.NewHandler(store, issuer, logger)

	mux := relay.SetupRoutes(hub, *cfg, logger)
	accounts.Register(mux)

	server := relay.CreateServer(cfg.Port, mux)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Port).Msg("server listening")
		serverErr <- relay.StartServer(server)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, err
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	if err := relay.ShutdownServer(server, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown incomplete")
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("hub shutdown incomplete")
	}

	return exitOK, nil
}
