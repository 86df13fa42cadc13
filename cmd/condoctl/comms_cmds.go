package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-condo-client/services/ai"
	"github.com/jrsteele09/go-condo-client/services/dashboard"
	"github.com/jrsteele09/go-condo-client/services/documents"
	"github.com/jrsteele09/go-condo-client/services/imports"
	"github.com/jrsteele09/go-condo-client/services/notifications"
	"github.com/spf13/cobra"
)

func (c *cli) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notifications", Short: "Read notifications"}

	var unreadOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *bool
			if unreadOnly {
				filter = &unreadOnly
			}
			list, err := notifications.NewService(c.app.Client).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			t := table{header: []string{"ID", "", "PRIORITY", "TITLE", "CREATED"}}
			for _, n := range list {
				mark := ""
				if n.Unread() {
					mark = "*"
				}
				t.add(n.ID, mark, string(n.Priority), n.Title, n.CreatedAt)
			}
			return c.render(list, t)
		},
	}
	list.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")

	var all bool
	read := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark a notification, or all of them, as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := notifications.NewService(c.app.Client)
			switch {
			case all:
				if err := svc.MarkAllAsRead(cmd.Context()); err != nil {
					return err
				}
				return c.message(map[string]bool{"all": true}, "All notifications marked as read")
			case len(args) == 1:
				if err := svc.MarkAsRead(cmd.Context(), args[0]); err != nil {
					return err
				}
				return c.message(map[string]string{"id": args[0]}, "Notification %s marked as read", args[0])
			default:
				return fmt.Errorf("give a notification id or --all")
			}
		},
	}
	read.Flags().BoolVar(&all, "all", false, "Mark every notification as read")

	count := &cobra.Command{
		Use:   "unread-count",
		Short: "Print the number of unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := notifications.NewService(c.app.Client).UnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			return c.message(map[string]int{"count": n}, "%d", n)
		},
	}

	cmd.AddCommand(list, read, count)
	return cmd
}

func (c *cli) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "documents", Short: "Browse and download documents"}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := documents.NewService(c.app.Client)
			var (
				list []documents.Document
				err  error
			)
			if category != "" {
				list, err = svc.ListByCategory(cmd.Context(), documents.Category(category))
			} else {
				list, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			t := table{header: []string{"ID", "NAME", "CATEGORY", "SIZE", "PUBLIC", "STATUS"}}
			for _, d := range list {
				t.add(d.ID, d.Name, string(d.Category), fmt.Sprintf("%d", d.FileSize), yesNo(d.IsPublic), string(d.Status))
			}
			return c.render(list, t)
		},
	}
	list.Flags().StringVar(&category, "category", "", "Only documents of this category")

	var target string
	download := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a document to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := documents.NewService(c.app.Client)
			path := target
			if path == "" {
				d, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				path = filepath.Base(d.Name)
			}
			data, _, err := svc.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			return c.message(map[string]any{"id": args[0], "path": path, "bytes": len(data)}, "Saved %s (%d bytes)", path, len(data))
		},
	}
	download.Flags().StringVarP(&target, "file", "f", "", "Destination file; defaults to the document name")

	cmd.AddCommand(list, download)
	return cmd
}

func (c *cli) renderJobs(v any, jobs []imports.Job) error {
	t := table{header: []string{"ID", "TYPE", "FILE", "STATUS", "OK", "FAILED"}}
	for _, j := range jobs {
		t.add(j.ID, string(j.Type), j.Filename, string(j.Status), itoa(j.SuccessfulRows), itoa(j.FailedRows))
	}
	return c.render(v, t)
}

func (c *cli) importsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "imports", Short: "Bulk CSV imports (administrators)"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List import jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := imports.NewService(c.app.Client).List(cmd.Context())
			if err != nil {
				return err
			}
			return c.renderJobs(jobs, jobs)
		},
	}

	var (
		typ     string
		preview bool
	)
	upload := &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Upload a CSV file for import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := imports.NewService(c.app.Client)
			name := filepath.Base(args[0])
			if preview {
				p, err := svc.Preview(cmd.Context(), name, f)
				if err != nil {
					return err
				}
				t := table{header: p.Headers, rows: p.Rows}
				return c.render(p, t)
			}

			job, err := svc.Upload(cmd.Context(), name, f, imports.Type(typ))
			if err != nil {
				return err
			}
			if err := c.renderJobs(job, []imports.Job{*job}); err != nil {
				return err
			}
			if c.output == formatTable {
				for _, e := range job.Errors {
					fmt.Fprintf(c.out, "  row %d %s: %s\n", e.Row, e.Field, e.Message)
				}
			}
			return nil
		},
	}
	upload.Flags().StringVarP(&typ, "type", "t", "", "Import type (units, users, payments, meters)")
	upload.Flags().BoolVar(&preview, "preview", false, "Only show how the server parses the file")

	cmd.AddCommand(list, upload)
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	var (
		conversationID string
		ask            bool
	)
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Talk to the condominium assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := ai.NewService(c.app.Client)
			text := strings.Join(args, " ")
			if ask {
				answer, err := svc.Ask(cmd.Context(), text, 0)
				if err != nil {
					return err
				}
				if c.output != formatTable {
					return c.render(answer, table{})
				}
				fmt.Fprintln(c.out, answer.Answer)
				for _, s := range answer.Sources {
					fmt.Fprintf(c.out, "  source: %s\n", s.Filename)
				}
				return nil
			}

			out, err := svc.SendMessage(cmd.Context(), ai.SendMessageInput{ConversationID: conversationID, Content: text})
			if err != nil {
				return err
			}
			return c.message(out, "%s\n(conversation %s)", out.AssistantMessage.Content, out.ConversationID)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "Continue this conversation")
	cmd.Flags().BoolVar(&ask, "ask", false, "Ask a one-off question answered from the documents")
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the administrator overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := dashboard.NewService(c.app.Client, c.app.Log).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			t := table{header: []string{"METRIC", "VALUE"}}
			t.add("users", itoa(m.TotalUsers))
			t.add("residents", itoa(m.TotalResidents))
			t.add("staff", itoa(m.TotalStaff))
			t.add("admins", itoa(m.TotalAdmins))
			t.add("new this week", itoa(m.RecentUsers))
			t.add("reservations", itoa(m.TotalReservations))
			t.add("active reservations", itoa(m.ActiveReservations))
			t.add("common areas", itoa(m.TotalAreas))
			return c.render(m, t)
		},
	}
}
