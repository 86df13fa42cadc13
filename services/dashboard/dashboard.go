// Package dashboard computes the admin overview from the list endpoints.
package dashboard

import (
	"context"
	"time"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/utils"
	"github.com/jrsteele09/go-condo-client/services/commonareas"
	"github.com/jrsteele09/go-condo-client/services/reservations"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const recentUserWindow = 7 * 24 * time.Hour

type Metrics struct {
	TotalUsers         int `json:"total_users" yaml:"total_users"`
	TotalResidents     int `json:"total_residents" yaml:"total_residents"`
	TotalStaff         int `json:"total_staff" yaml:"total_staff"`
	TotalAdmins        int `json:"total_admins" yaml:"total_admins"`
	TotalReservations  int `json:"total_reservations" yaml:"total_reservations"`
	TotalAreas         int `json:"total_areas" yaml:"total_areas"`
	ActiveReservations int `json:"active_reservations" yaml:"active_reservations"`
	RecentUsers        int `json:"recent_users" yaml:"recent_users"`
}

type Service struct {
	client *apiclient.Client
	log    zerolog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithNowTime sets the clock used for "recent" (primarily for testing).
func WithNowTime(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(client *apiclient.Client, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		client: client,
		log:    log.With().Str("component", "dashboard").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the overview, or all zeroes when any source fails. The
// failure is logged; a session expiry has already been handled by the client.
func (s *Service) Metrics(ctx context.Context) Metrics {
	m, err := s.Fetch(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load dashboard metrics")
		return Metrics{}
	}
	return m
}

// Fetch loads users, reservations and common areas concurrently and
// aggregates them. Any failure fails the whole fetch.
func (s *Service) Fetch(ctx context.Context) (Metrics, error) {
	var (
		allUsers []users.User
		allRes   []reservations.Reservation
		allAreas []commonareas.CommonArea
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var page apiclient.Page[users.User]
		if err := s.client.Get(gctx, "/users", nil, &page); err != nil {
			return err
		}
		allUsers = page.Items
		return nil
	})
	g.Go(func() error {
		var err error
		allRes, err = reservations.NewService(s.client).List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		allAreas, err = commonareas.NewService(s.client).List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Metrics{}, err
	}
	return Aggregate(allUsers, allRes, allAreas, s.now()), nil
}

// Aggregate computes the overview from already loaded lists.
func Aggregate(allUsers []users.User, allRes []reservations.Reservation, allAreas []commonareas.CommonArea, now time.Time) Metrics {
	m := Metrics{
		TotalUsers:        len(allUsers),
		TotalReservations: len(allRes),
		TotalAreas:        len(allAreas),
	}

	cutoff := now.Add(-recentUserWindow)
	for i := range allUsers {
		u := &allUsers[i]
		switch {
		case u.IsAdmin():
			m.TotalAdmins++
		case u.IsResident():
			m.TotalResidents++
		case u.IsEmployee():
			m.TotalStaff++
		}
		if created, ok := utils.ParseTimestamp(u.CreatedAt, now.Location()); ok && created.After(cutoff) {
			m.RecentUsers++
		}
	}

	for _, r := range allRes {
		switch r.Status {
		case reservations.StatusConfirmed, reservations.StatusInProgress, "in-progress":
			m.ActiveReservations++
		}
	}
	return m
}
