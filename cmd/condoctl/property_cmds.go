package main

import (
	"strconv"
	"time"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/services/commonareas"
	"github.com/jrsteele09/go-condo-client/services/reservations"
	"github.com/jrsteele09/go-condo-client/services/units"
	usersvc "github.com/jrsteele09/go-condo-client/services/users"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) renderUsers(v any, list []users.User) error {
	t := table{header: []string{"ID", "EMAIL", "NAME", "ROLE", "ACTIVE", "UNIT"}}
	for _, u := range list {
		t.add(u.ID, u.Email, u.FullName, string(u.Role), yesNo(u.IsActive), u.UnitID)
	}
	return c.render(v, t)
}

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage users (administrators)"}

	var (
		params     users.ListParams
		role       string
		activeOnly bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params.Role = users.RoleType(role)
			if cmd.Flags().Changed("active") {
				params.IsActive = &activeOnly
			}
			page, err := usersvc.NewService(c.app.Client).List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return c.renderUsers(page, page.Items)
		},
	}
	list.Flags().StringVar(&role, "role", "", "Filter by role (admin, resident, employee)")
	list.Flags().BoolVar(&activeOnly, "active", true, "Filter by active state")
	list.Flags().StringVar(&params.Search, "search", "", "Match name or email")
	list.Flags().IntVar(&params.Page, "page", 0, "Page number")
	list.Flags().IntVar(&params.Limit, "limit", 0, "Page size")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := usersvc.NewService(c.app.Client).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.renderUsers(u, []users.User{*u})
		},
	}

	setActive := func(use string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: use + " a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := usersvc.NewService(c.app.Client).SetActive(cmd.Context(), args[0], active)
				if err != nil {
					return err
				}
				return c.renderUsers(u, []users.User{*u})
			},
		}
	}

	cmd.AddCommand(list, get, setActive("activate", true), setActive("deactivate", false))
	return cmd
}

func (c *cli) unitsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "units", Short: "Browse units"}

	var (
		params      units.ListParams
		typ, status string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params.Type, params.Status = units.UnitType(typ), units.Status(status)
			page, err := units.NewService(c.app.Client).List(cmd.Context(), params)
			if err != nil {
				return err
			}
			t := table{header: []string{"ID", "NUMBER", "TYPE", "BLOCK", "FLOOR", "AREA", "STATUS"}}
			for _, u := range page.Items {
				t.add(u.ID, u.Number, string(u.Type), u.Block, u.Floor, strconv.FormatFloat(u.Area, 'f', -1, 64), string(u.Status))
			}
			return c.render(page, t)
		},
	}
	list.Flags().StringVar(&typ, "type", "", "Filter by type (apartment, house, commercial)")
	list.Flags().StringVar(&status, "status", "", "Filter by status (occupied, vacant)")
	list.Flags().StringVar(&params.Search, "search", "", "Match number or block")
	addPageFlags(list, &params.PageParams)

	cmd.AddCommand(list)
	return cmd
}

func addPageFlags(cmd *cobra.Command, p *apiclient.PageParams) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "Page size")
}

func (c *cli) areasCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "areas", Short: "Browse common areas"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List common areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := commonareas.NewService(c.app.Client).List(cmd.Context())
			if err != nil {
				return err
			}
			t := table{header: []string{"ID", "NAME", "CAPACITY", "HOURS", "ACTIVE"}}
			for _, a := range list {
				hours := ""
				if a.AvailableHoursStart != "" {
					hours = a.AvailableHoursStart + "-" + a.AvailableHoursEnd
				}
				t.add(a.ID, a.Name, itoa(a.Capacity), hours, yesNo(a.IsActive))
			}
			return c.render(list, t)
		},
	})
	return cmd
}

func (c *cli) renderReservations(list []reservations.Reservation) error {
	t := table{header: []string{"ID", "AREA", "DATE", "START", "END", "STATUS", "UNIT"}}
	for _, r := range list {
		area := r.CommonAreaName
		if area == "" {
			area = r.CommonAreaID
		}
		t.add(r.ID, area, r.ReservationDate, r.StartTime, r.EndTime, string(r.Status), r.UnitNumber)
	}
	return c.render(list, t)
}

func (c *cli) reservationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reservations", Short: "Manage common area reservations"}

	var areaID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := reservations.NewService(c.app.Client)
			var (
				list []reservations.Reservation
				err  error
			)
			if areaID != "" {
				list, err = svc.ListByArea(cmd.Context(), areaID)
			} else {
				list, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			return c.renderReservations(list)
		},
	}
	list.Flags().StringVar(&areaID, "area", "", "Only reservations of this common area")

	var within time.Duration
	upcoming := &cobra.Command{
		Use:   "upcoming",
		Short: "List active reservations that have not started yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := reservations.NewService(c.app.Client).Upcoming(cmd.Context(), time.Now(), within)
			if err != nil {
				return err
			}
			return c.renderReservations(list)
		},
	}
	upcoming.Flags().DurationVar(&within, "within", 0, "Only reservations starting within this window, e.g. 168h")

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reservations.NewService(c.app.Client).Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.message(map[string]string{"id": args[0], "status": string(reservations.StatusCancelled)}, "Reservation %s cancelled", args[0])
		},
	}

	cmd.AddCommand(list, upcoming, cancel)
	return cmd
}
