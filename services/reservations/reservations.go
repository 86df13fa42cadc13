// Package reservations wraps the /reservations endpoints, including the
// staff actions used by the employee tools.
package reservations

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/utils"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCancelled  Status = "cancelled"
	StatusCompleted  Status = "completed"
)

// Active reports whether the reservation still holds its slot.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, "in-progress":
		return true
	}
	return false
}

// Reservation times are kept as sent. StartTime is either a full timestamp
// or a clock time relative to ReservationDate; see StartsAt.
type Reservation struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	CommonAreaID    string `json:"common_area_id"`
	CommonAreaName  string `json:"common_area_name,omitempty"`
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name,omitempty"`
	UnitID          string `json:"unit_id,omitempty"`
	UnitNumber      string `json:"unit_number,omitempty"`
	ReservationDate string `json:"reservation_date,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          Status `json:"status"`
	GuestsCount     int    `json:"guests_count,omitempty"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

var clockLayouts = []string{"15:04:05", "15:04"}

// StartsAt resolves the start of the reservation. Timestamps without a zone
// are read in loc.
func (r Reservation) StartsAt(loc *time.Location) (time.Time, bool) {
	return resolve(r.ReservationDate, r.StartTime, loc)
}

func (r Reservation) EndsAt(loc *time.Location) (time.Time, bool) {
	return resolve(r.ReservationDate, r.EndTime, loc)
}

func resolve(date, clock string, loc *time.Location) (time.Time, bool) {
	if t, ok := utils.ParseTimestamp(clock, loc); ok {
		return t, true
	}
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, clock); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), true
		}
	}
	return time.Time{}, false
}

type CreateInput struct {
	CommonAreaID    string `json:"common_area_id"`
	ReservationDate string `json:"reservation_date,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	GuestsCount     int    `json:"guests_count,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type UpdateInput struct {
	ReservationDate *string `json:"reservation_date,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	GuestsCount     *int    `json:"guests_count,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Status          *Status `json:"status,omitempty"`
}

// IssueReport is sent by staff when something went wrong during a reservation.
type IssueReport struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type IssueReportResult struct {
	Message              string `json:"message"`
	NotificationsCreated int    `json:"notifications_created"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]Reservation, error) {
	return s.list(ctx, "/reservations", nil)
}

func (s *Service) ListByArea(ctx context.Context, areaID string) ([]Reservation, error) {
	return s.list(ctx, "/reservations/common-area/"+areaID, nil)
}

// ListByDateRange takes dates as YYYY-MM-DD.
func (s *Service) ListByDateRange(ctx context.Context, start, end string) ([]Reservation, error) {
	return s.list(ctx, "/reservations/date-range", url.Values{"start_date": {start}, "end_date": {end}})
}

func (s *Service) Get(ctx context.Context, id string) (*Reservation, error) {
	return s.call(ctx, http.MethodGet, "/reservations/"+id, nil)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Reservation, error) {
	return s.call(ctx, http.MethodPost, "/reservations", in)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Reservation, error) {
	return s.call(ctx, http.MethodPut, "/reservations/"+id, in)
}

func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.client.Put(ctx, "/reservations/"+id+"/cancel", nil, nil)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/reservations/"+id, nil)
}

// Confirm approves a pending reservation. Administrators only.
func (s *Service) Confirm(ctx context.Context, id string) (*Reservation, error) {
	return s.call(ctx, http.MethodPut, "/reservations/"+id+"/confirm", nil)
}

// Start marks the reservation as in progress (staff only).
func (s *Service) Start(ctx context.Context, id string) (*Reservation, error) {
	return s.call(ctx, http.MethodPut, "/reservations/"+id+"/start", nil)
}

// Complete closes the reservation (staff only).
func (s *Service) Complete(ctx context.Context, id string) (*Reservation, error) {
	return s.call(ctx, http.MethodPut, "/reservations/"+id+"/complete", nil)
}

func (s *Service) ReportIssue(ctx context.Context, id string, report IssueReport) (*IssueReportResult, error) {
	var out IssueReportResult
	if err := s.client.Post(ctx, "/reservations/"+id+"/report-issue", report, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upcoming returns the active reservations starting after now, and within
// window of it when window is positive, earliest first. Reservations whose
// start cannot be read are skipped.
func (s *Service) Upcoming(ctx context.Context, now time.Time, window time.Duration) ([]Reservation, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterUpcoming(all, now, window), nil
}

func FilterUpcoming(all []Reservation, now time.Time, window time.Duration) []Reservation {
	type entry struct {
		r     Reservation
		start time.Time
	}
	var upcoming []entry
	for _, r := range all {
		if !r.Status.Active() {
			continue
		}
		start, ok := r.StartsAt(now.Location())
		if !ok || start.Before(now) {
			continue
		}
		if window > 0 && start.After(now.Add(window)) {
			continue
		}
		upcoming = append(upcoming, entry{r: r, start: start})
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].start.Before(upcoming[j].start) })

	out := make([]Reservation, len(upcoming))
	for i, e := range upcoming {
		out[i] = e.r
	}
	return out
}

func (s *Service) list(ctx context.Context, path string, q url.Values) ([]Reservation, error) {
	var page apiclient.Page[Reservation]
	if err := s.client.Get(ctx, path, q, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) call(ctx context.Context, method, path string, body any) (*Reservation, error) {
	req, err := apiclient.NewJSONRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	var r Reservation
	if err := s.client.Do(ctx, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
