package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-condo-client/services/commonareas"
	"github.com/jrsteele09/go-condo-client/services/notifications"
	"github.com/jrsteele09/go-condo-client/services/reservations"
	"github.com/jrsteele09/go-condo-client/services/units"
	"github.com/jrsteele09/go-condo-client/users"
)

func (s *Server) ListUnitsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		typ, status := q.Get("type"), q.Get("status")
		search := strings.ToLower(q.Get("search"))
		tenant := tenantOf(r)

		list := s.units.list(func(u units.Unit) bool {
			if u.TenantID != tenant {
				return false
			}
			if typ != "" && string(u.Type) != typ {
				return false
			}
			if status != "" && string(u.Status) != status {
				return false
			}
			return search == "" || strings.Contains(strings.ToLower(u.Number+" "+u.Block), search)
		})
		writeList(w, r, list)
	}
}

func (s *Server) GetUnitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUnit(r)
		if !ok {
			notFound(w, "Unit")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) CreateUnitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in units.CreateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if issues := validateUnit(in.Number, in.Type, in.Area); len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}
		tenant := tenantOf(r)
		if s.unitNumberTaken(tenant, in.Number, "") {
			writeDetail(w, http.StatusBadRequest, "Unit number already exists")
			return
		}

		now := nowString()
		u := units.Unit{
			ID:        uuid.New().String(),
			TenantID:  tenant,
			Number:    in.Number,
			Type:      in.Type,
			Area:      in.Area,
			Floor:     in.Floor,
			Block:     in.Block,
			Status:    units.StatusVacant,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.units.put(u.ID, u)
		writeJSON(w, http.StatusCreated, u)
	}
}

func (s *Server) UpdateUnitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := s.tenantUnit(r)
		if !ok {
			notFound(w, "Unit")
			return
		}
		var in units.UpdateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Area != nil && *in.Area <= 0 {
			writeValidation(w, greaterThanZero("area"))
			return
		}
		if in.Number != nil && s.unitNumberTaken(current.TenantID, *in.Number, current.ID) {
			writeDetail(w, http.StatusBadRequest, "Unit number already exists")
			return
		}

		u, _ := s.units.update(current.ID, func(u *units.Unit) {
			if in.Number != nil {
				u.Number = *in.Number
			}
			if in.Type != nil {
				u.Type = *in.Type
			}
			if in.Area != nil {
				u.Area = *in.Area
			}
			if in.Floor != nil {
				u.Floor = *in.Floor
			}
			if in.Block != nil {
				u.Block = *in.Block
			}
			if in.Status != nil {
				u.Status = *in.Status
			}
			u.UpdatedAt = nowString()
		})
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) DeleteUnitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUnit(r)
		if !ok {
			notFound(w, "Unit")
			return
		}
		s.units.remove(u.ID)
		writeNoContent(w)
	}
}

func (s *Server) tenantUnit(r *http.Request) (units.Unit, bool) {
	u, ok := s.units.get(r.PathValue("id"))
	if !ok || u.TenantID != tenantOf(r) {
		return units.Unit{}, false
	}
	return u, true
}

func (s *Server) unitNumberTaken(tenant, number, exceptID string) bool {
	return len(s.units.list(func(u units.Unit) bool {
		return u.TenantID == tenant && u.ID != exceptID && strings.EqualFold(u.Number, number)
	})) > 0
}

func validateUnit(number string, typ units.UnitType, area float64) []validationIssue {
	var issues []validationIssue
	if number == "" {
		issues = append(issues, missingField("body", "number"))
	}
	switch typ {
	case units.TypeApartment, units.TypeHouse, units.TypeCommercial:
	case "":
		issues = append(issues, missingField("body", "type"))
	default:
		issues = append(issues, validationIssue{
			Loc:  []string{"body", "type"},
			Msg:  "Input should be 'apartment', 'house' or 'commercial'",
			Type: "enum",
		})
	}
	if area <= 0 {
		issues = append(issues, greaterThanZero("area"))
	}
	return issues
}

func greaterThanZero(field string) validationIssue {
	return validationIssue{Loc: []string{"body", field}, Msg: "Input should be greater than 0", Type: "greater_than"}
}

func (s *Server) ListAreasHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantOf(r)
		admin := currentUser(r).IsAdmin()
		list := s.areas.list(func(a commonareas.CommonArea) bool {
			return a.TenantID == tenant && (admin || a.IsActive)
		})
		writeList(w, r, list)
	}
}

func (s *Server) GetAreaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := s.tenantArea(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Common area")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func (s *Server) CreateAreaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in commonareas.CreateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		var issues []validationIssue
		if in.Name == "" {
			issues = append(issues, missingField("body", "name"))
		}
		if in.Capacity <= 0 {
			issues = append(issues, greaterThanZero("capacity"))
		}
		if len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}

		now := nowString()
		a := commonareas.CommonArea{
			ID:                  uuid.New().String(),
			TenantID:            tenantOf(r),
			Name:                in.Name,
			Description:         in.Description,
			Capacity:            in.Capacity,
			AvailableHoursStart: in.AvailableHoursStart,
			AvailableHoursEnd:   in.AvailableHoursEnd,
			IsActive:            true,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		s.areas.put(a.ID, a)
		writeJSON(w, http.StatusCreated, a)
	}
}

func (s *Server) UpdateAreaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := s.tenantArea(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Common area")
			return
		}
		var in commonareas.UpdateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Capacity != nil && *in.Capacity <= 0 {
			writeValidation(w, greaterThanZero("capacity"))
			return
		}

		a, _ := s.areas.update(current.ID, func(a *commonareas.CommonArea) {
			if in.Name != nil {
				a.Name = *in.Name
			}
			if in.Description != nil {
				a.Description = *in.Description
			}
			if in.Capacity != nil {
				a.Capacity = *in.Capacity
			}
			if in.AvailableHoursStart != nil {
				a.AvailableHoursStart = *in.AvailableHoursStart
			}
			if in.AvailableHoursEnd != nil {
				a.AvailableHoursEnd = *in.AvailableHoursEnd
			}
			if in.IsActive != nil {
				a.IsActive = *in.IsActive
			}
			a.UpdatedAt = nowString()
		})
		writeJSON(w, http.StatusOK, a)
	}
}

func (s *Server) DeleteAreaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := s.tenantArea(r, r.PathValue("id"))
		if !ok {
			notFound(w, "Common area")
			return
		}
		s.areas.remove(a.ID)
		writeNoContent(w)
	}
}

func (s *Server) tenantArea(r *http.Request, id string) (commonareas.CommonArea, bool) {
	a, ok := s.areas.get(id)
	if !ok || a.TenantID != tenantOf(r) {
		return commonareas.CommonArea{}, false
	}
	return a, true
}

// visibleReservations is the tenant's reservations for administrators and
// employees, and the caller's own for residents.
func (s *Server) visibleReservations(r *http.Request, match func(reservations.Reservation) bool) []reservations.Reservation {
	me := currentUser(r)
	return s.reservations.list(func(res reservations.Reservation) bool {
		if res.TenantID != me.TenantID {
			return false
		}
		if me.IsResident() && res.UserID != me.ID {
			return false
		}
		return match == nil || match(res)
	})
}

func (s *Server) ListReservationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		writeList(w, r, s.visibleReservations(r, func(res reservations.Reservation) bool {
			return status == "" || string(res.Status) == status
		}))
	}
}

func (s *Server) ReservationsByAreaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		areaID := r.PathValue("area_id")
		if _, ok := s.tenantArea(r, areaID); !ok {
			notFound(w, "Common area")
			return
		}
		writeList(w, r, s.visibleReservations(r, func(res reservations.Reservation) bool {
			return res.CommonAreaID == areaID
		}))
	}
}

// ReservationsByDateHandler filters on the reservation day, inclusive of both
// ends. Dates are YYYY-MM-DD so string comparison orders them.
func (s *Server) ReservationsByDateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, end := q.Get("start_date"), q.Get("end_date")
		var issues []validationIssue
		for field, v := range map[string]string{"start_date": start, "end_date": end} {
			if v == "" {
				issues = append(issues, missingField("query", field))
			} else if _, err := time.Parse(time.DateOnly, v); err != nil {
				issues = append(issues, validationIssue{Loc: []string{"query", field}, Msg: "Input should be a valid date", Type: "date_parsing"})
			}
		}
		if len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}

		writeList(w, r, s.visibleReservations(r, func(res reservations.Reservation) bool {
			day := reservationDay(res)
			return day != "" && day >= start && day <= end
		}))
	}
}

func reservationDay(res reservations.Reservation) string {
	if res.ReservationDate != "" {
		return res.ReservationDate
	}
	if t, ok := res.StartsAt(time.UTC); ok {
		return t.Format(time.DateOnly)
	}
	return ""
}

func (s *Server) GetReservationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.ownReservation(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) CreateReservationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in reservations.CreateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		var issues []validationIssue
		if in.CommonAreaID == "" {
			issues = append(issues, missingField("body", "common_area_id"))
		}
		if in.StartTime == "" {
			issues = append(issues, missingField("body", "start_time"))
		}
		if in.EndTime == "" {
			issues = append(issues, missingField("body", "end_time"))
		}
		if len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}

		area, ok := s.tenantArea(r, in.CommonAreaID)
		if !ok {
			notFound(w, "Common area")
			return
		}
		if !area.IsActive {
			writeDetail(w, http.StatusBadRequest, "Common area is not available")
			return
		}

		me := currentUser(r)
		now := nowString()
		res := reservations.Reservation{
			ID:              uuid.New().String(),
			TenantID:        me.TenantID,
			CommonAreaID:    area.ID,
			CommonAreaName:  area.Name,
			UserID:          me.ID,
			UserName:        me.FullName,
			UnitID:          me.UnitID,
			ReservationDate: in.ReservationDate,
			StartTime:       in.StartTime,
			EndTime:         in.EndTime,
			Status:          reservations.StatusPending,
			GuestsCount:     in.GuestsCount,
			Notes:           in.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if u, ok := s.units.get(me.UnitID); ok {
			res.UnitNumber = u.Number
		}
		if msg := s.reservations.putChecked(res.ID, res, func(all []reservations.Reservation) string {
			return reservationConflict(res, all)
		}); msg != "" {
			writeDetail(w, http.StatusBadRequest, msg)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// reservationConflict rejects slots that are unreadable, inverted or overlap
// another active reservation of the same area in existing.
func reservationConflict(res reservations.Reservation, existing []reservations.Reservation) string {
	start, okStart := res.StartsAt(time.UTC)
	end, okEnd := res.EndsAt(time.UTC)
	if !okStart || !okEnd {
		return "Invalid reservation time"
	}
	if !end.After(start) {
		return "End time must be after start time"
	}
	for _, other := range existing {
		if other.ID == res.ID || other.CommonAreaID != res.CommonAreaID || !other.Status.Active() {
			continue
		}
		otherStart, ok1 := other.StartsAt(time.UTC)
		otherEnd, ok2 := other.EndsAt(time.UTC)
		if ok1 && ok2 && start.Before(otherEnd) && otherStart.Before(end) {
			return "Time slot already reserved"
		}
	}
	return ""
}

func (s *Server) UpdateReservationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := s.ownReservation(w, r)
		if !ok {
			return
		}
		var in reservations.UpdateInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Status != nil && !currentUser(r).IsAdmin() {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}

		next := current
		if in.ReservationDate != nil {
			next.ReservationDate = *in.ReservationDate
		}
		if in.StartTime != nil {
			next.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			next.EndTime = *in.EndTime
		}
		if in.GuestsCount != nil {
			next.GuestsCount = *in.GuestsCount
		}
		if in.Notes != nil {
			next.Notes = *in.Notes
		}
		if in.Status != nil {
			next.Status = *in.Status
		}
		next.UpdatedAt = nowString()
		if msg := s.reservations.putChecked(next.ID, next, func(all []reservations.Reservation) string {
			if !next.Status.Active() {
				return ""
			}
			return reservationConflict(next, all)
		}); msg != "" {
			writeDetail(w, http.StatusBadRequest, msg)
			return
		}
		writeJSON(w, http.StatusOK, next)
	}
}

func (s *Server) DeleteReservationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.ownReservation(w, r)
		if !ok {
			return
		}
		s.reservations.remove(res.ID)
		writeNoContent(w)
	}
}

// reservationTransitions lists the states each action may start from.
var reservationTransitions = map[string]struct {
	from []reservations.Status
	to   reservations.Status
}{
	"cancel":   {from: []reservations.Status{reservations.StatusPending, reservations.StatusConfirmed}, to: reservations.StatusCancelled},
	"confirm":  {from: []reservations.Status{reservations.StatusPending}, to: reservations.StatusConfirmed},
	"start":    {from: []reservations.Status{reservations.StatusPending, reservations.StatusConfirmed}, to: reservations.StatusInProgress},
	"complete": {from: []reservations.Status{reservations.StatusInProgress}, to: reservations.StatusCompleted},
}

func (s *Server) ReservationActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.PathValue("action")
		tr, known := reservationTransitions[action]
		if !known {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		if action == "confirm" && !currentUser(r).IsAdmin() {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		current, ok := s.ownReservation(w, r)
		if !ok {
			return
		}
		allowed := false
		for _, from := range tr.from {
			if current.Status == from {
				allowed = true
				break
			}
		}
		if !allowed {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Cannot %s a %s reservation", action, current.Status))
			return
		}

		res, _ := s.reservations.update(current.ID, func(res *reservations.Reservation) {
			res.Status = tr.to
			res.UpdatedAt = nowString()
		})
		writeJSON(w, http.StatusOK, res)
	}
}

// ReportIssueHandler notifies every administrator of the tenant.
func (s *Server) ReportIssueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.ownReservation(w, r)
		if !ok {
			return
		}
		var in reservations.IssueReport
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.Description) == "" {
			writeValidation(w, missingField("body", "description"))
			return
		}
		priority := notifications.PriorityNormal
		switch in.Severity {
		case "high":
			priority = notifications.PriorityHigh
		case "critical", "urgent":
			priority = notifications.PriorityUrgent
		}

		me := currentUser(r)
		admins := s.users.List(me.TenantID, func(u users.User) bool { return u.IsAdmin() })
		for _, admin := range admins {
			s.notify(notifications.Notification{
				TenantID: me.TenantID,
				UserID:   admin.ID,
				Type:     notifications.TypeWarning,
				Priority: priority,
				Title:    "Issue reported: " + res.CommonAreaName,
				Message:  fmt.Sprintf("%s reported: %s", me.FullName, in.Description),
				Metadata: map[string]any{"reservation_id": res.ID, "severity": in.Severity},
			})
		}
		writeJSON(w, http.StatusOK, reservations.IssueReportResult{
			Message:              "Issue reported successfully",
			NotificationsCreated: len(admins),
		})
	}
}

// ownReservation loads the path reservation and checks that the caller may
// act on it, answering the error itself.
func (s *Server) ownReservation(w http.ResponseWriter, r *http.Request) (reservations.Reservation, bool) {
	res, ok := s.reservations.get(r.PathValue("id"))
	if !ok || res.TenantID != tenantOf(r) {
		notFound(w, "Reservation")
		return reservations.Reservation{}, false
	}
	if me := currentUser(r); me.IsResident() && res.UserID != me.ID {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return reservations.Reservation{}, false
	}
	return res, true
}
