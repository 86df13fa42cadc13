package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) apiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api <path>",
		Short: "GET an API path with the session token and print the raw body",
		Long:  "api sends the stored access token as it is. An expired token is not refreshed here; any other command refreshes it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := c.app.Client.BaseURL() + "/" + strings.TrimPrefix(args[0], "/")
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.app.HTTPClient().Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return fmt.Errorf("GET %s: %s %s", args[0], resp.Status, strings.TrimSpace(string(body)))
			}
			_, err = io.Copy(c.out, resp.Body)
			return err
		},
	}
}
