package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/bootstrap"
	"github.com/jrsteele09/go-condo-client/internal/config"
	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	output   string
	logLevel string
	envFile  string

	app *bootstrap.App
}

func (c *cli) setup(cmd *cobra.Command) error {
	if err := loadEnv(c.envFile); err != nil {
		return err
	}
	switch c.output {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", c.output)
	}
	if cmd.Annotations[skipClient] != "" {
		return nil
	}

	cfg := config.New()
	level := c.logLevel
	if level == "" {
		level = cfg.GetLogLevel()
	}
	log := logging.New(c.errOut, level, cfg.GetEnv())

	navigator := apiclient.NavigatorFunc(func(context.Context, string) {
		fmt.Fprintf(c.errOut, "session expired, run `%s login`\n", appName)
	})
	app, err := bootstrap.New(cmd.Context(), cfg, log, navigator)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// loadEnv reads file, or .env when file is empty. Variables already set in
// the environment win. A missing default .env is not an error.
func loadEnv(file string) error {
	if file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipClient: "true"},
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(c.out, figure.NewFigure(appName, "cybermedium", true).String())
			fmt.Fprintf(c.out, "%s version %s\n", appName, Version)
		},
	}
}
