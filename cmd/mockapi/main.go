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
	"github.com/jrsteele09/go-condo-client/internal/config"
	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %s\n", err)
	}

	c := config.New()
	log := logging.New(os.Stderr, c.GetLogLevel(), c.GetEnv())

	if err := run(c, log); err != nil {
		log.Fatal().Err(err).Msg("Error running mock API")
	}
	log.Info().Msg("Mock API stopped")
}

func run(c config.Config, log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName() + " mock")
	api, err := mockapi.New(c, mockapi.WithEnv(c.GetEnv()), mockapi.WithLogger(log))
	if err != nil {
		return fmt.Errorf("mockapi.New: %w", err)
	}
	printCredentials(log, c)

	server := &http.Server{Addr: c.GetPort(), Handler: api, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(log, server) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(log zerolog.Logger, server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Mock API listening")
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

func printCredentials(log zerolog.Logger, c config.Config) {
	base := "http://localhost" + c.GetPort() + mockapi.APIPrefix
	log.Info().Msg("📋 Mock API configuration:")
	log.Info().Msgf("   Base URL:    %s", base)
	log.Info().Msgf("   Tenant ID:   %s", mockapi.SeedTenantID)
	log.Info().Msgf("   Token TTL:   %s", c.GetDefaultAccessTokenExpiry())
	log.Info().Msg("👤 Seeded accounts:")
	for _, seed := range []mockapi.UserSeed{mockapi.SeedAdmin, mockapi.SeedEmployee, mockapi.SeedResident} {
		log.Info().Msgf("   %-9s %-22s %s", seed.User.Role, seed.User.Email, seed.Password)
	}
	log.Info().Msgf("   Point the client at it with CONDO_API_URL=http://localhost%s", c.GetPort())
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
