package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-condo-client/services/auth"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(c.errOut, "Password: ")
				line, err := bufio.NewReader(c.in).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			u, err := auth.NewService(c.app.Client).SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return c.message(u, "Logged in as %s (%s)", u.Email, u.Role)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password; read from stdin when omitted")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.NewService(c.app.Client).SignOut(cmd.Context()); err != nil {
				return err
			}
			return c.message(map[string]bool{"isAuthenticated": false}, "Logged out")
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user as the API sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := auth.NewService(c.app.Client).Me(cmd.Context())
			if err != nil {
				return err
			}
			return c.renderUsers(u, []users.User{*u})
		},
	}
}

type statusView struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	TokenExpires  string `json:"token_expires,omitempty"`
	SessionStore  string `json:"session_store"`
	API           string `json:"api"`
}

// statusCmd reads only the local session; it makes no request.
func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session state",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			snap := c.app.Store.Snapshot()
			v := statusView{
				Authenticated: snap.IsAuthenticated,
				SessionStore:  string(c.app.Config.GetSessionStore()),
				API:           c.app.Client.BaseURL(),
			}
			if snap.User != nil {
				v.Email, v.Role = snap.User.Email, string(snap.User.Role)
			}
			if left, ok := c.app.Store.ExpiresIn(time.Now()); ok {
				if left > 0 {
					v.TokenExpires = "in " + left.Round(time.Second).String()
				} else {
					v.TokenExpires = "expired, refreshes on next request"
				}
			}

			t := table{header: []string{"FIELD", "VALUE"}}
			t.add("authenticated", yesNo(v.Authenticated))
			if v.Email != "" {
				t.add("user", v.Email+" ("+v.Role+")")
			}
			if v.TokenExpires != "" {
				t.add("access token", v.TokenExpires)
			}
			t.add("session store", v.SessionStore)
			t.add("api", v.API)
			return c.render(v, t)
		},
	}
}
