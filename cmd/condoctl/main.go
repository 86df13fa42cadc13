// Command condoctl is a terminal client for the condominium API. It keeps one
// persisted session and refreshes it transparently between invocations.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "condoctl"

	// skipClient marks commands that run without a session or API client.
	skipClient = "condoctl/skip-client"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	c := &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := execute(context.Background(), c, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs args and releases the session storage afterwards. cobra skips
// post-run hooks when a command fails, so the teardown cannot live there alone.
func execute(ctx context.Context, c *cli, args []string) error {
	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return errs.Join(err, c.teardown())
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Condominium API client",
		Long:          "condoctl signs in to the condominium API and manages users, units, reservations, notifications, documents and imports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.teardown()
		},
	}
	cmd.SetIn(c.in)
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)

	cmd.PersistentFlags().StringVarP(&c.output, "output", "o", formatTable, "Output format (table, json, yaml)")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", "", "Load environment variables from this file instead of .env")

	cmd.AddCommand(
		c.versionCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.statusCmd(),
		c.usersCmd(),
		c.unitsCmd(),
		c.areasCmd(),
		c.reservationsCmd(),
		c.notificationsCmd(),
		c.documentsCmd(),
		c.importsCmd(),
		c.chatCmd(),
		c.dashboardCmd(),
		c.apiCmd(),
	)
	return cmd
}
