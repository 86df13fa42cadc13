package mockapi

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-condo-client/services/commonareas"
	"github.com/jrsteele09/go-condo-client/services/documents"
	"github.com/jrsteele09/go-condo-client/services/notifications"
	"github.com/jrsteele09/go-condo-client/services/reservations"
	"github.com/jrsteele09/go-condo-client/services/units"
	"github.com/jrsteele09/go-condo-client/users"
)

const SeedTenantID = "tenant-demo"

// UserSeed is an account with its plain-text password.
type UserSeed struct {
	User     users.User
	Password string
}

// Seeded accounts. Their passwords are fixed so the CLI and tests can log in.
var (
	SeedAdmin = UserSeed{
		User: users.User{
			ID: "user-admin", Email: "admin@condo.test", FullName: "Ana Admin",
			Role: users.RoleAdmin, TenantID: SeedTenantID, IsActive: true,
		},
		Password: "admin123",
	}
	SeedResident = UserSeed{
		User: users.User{
			ID: "user-resident", Email: "resident@condo.test", FullName: "Rui Resident",
			Role: users.RoleResident, TenantID: SeedTenantID, IsActive: true, UnitID: "unit-101",
		},
		Password: "resident123",
	}
	SeedEmployee = UserSeed{
		User: users.User{
			ID: "user-employee", Email: "staff@condo.test", FullName: "Eva Employee",
			Role: users.RoleEmployee, TenantID: SeedTenantID, IsActive: true,
		},
		Password: "staff123",
	}
	SeedInactive = UserSeed{
		User: users.User{
			ID: "user-inactive", Email: "former@condo.test", FullName: "Ivo Inactive",
			Role: users.RoleResident, TenantID: SeedTenantID, IsActive: false,
		},
		Password: "former123",
	}
)

// seed loads a small demo condominium. Reservations are placed relative to
// NowTimeFunc so "upcoming" always has something to show.
func (s *Server) seed() error {
	now := NowTimeFunc().UTC()
	stamp := now.Format(time.RFC3339)

	for _, u := range []UserSeed{SeedAdmin, SeedResident, SeedEmployee, SeedInactive} {
		u.User.CreatedAt, u.User.UpdatedAt = stamp, stamp
		if err := s.AddUser(u); err != nil {
			return fmt.Errorf("[mockapi seed] failed to add %s: %w", u.User.Email, err)
		}
	}

	for _, u := range []units.Unit{
		{ID: "unit-101", Number: "101", Type: units.TypeApartment, Area: 72.5, Floor: "1", Block: "A", Status: units.StatusOccupied, ResidentsCount: 1},
		{ID: "unit-102", Number: "102", Type: units.TypeApartment, Area: 68, Floor: "1", Block: "A", Status: units.StatusVacant},
		{ID: "unit-201", Number: "201", Type: units.TypeApartment, Area: 95, Floor: "2", Block: "A", Status: units.StatusVacant},
		{ID: "unit-s01", Number: "S01", Type: units.TypeCommercial, Area: 40, Block: "B", Status: units.StatusOccupied},
	} {
		u.TenantID, u.CreatedAt, u.UpdatedAt = SeedTenantID, stamp, stamp
		s.units.put(u.ID, u)
	}

	partyHall := commonareas.CommonArea{ID: "area-party", Name: "Party Hall", Description: "Hall with kitchen for up to 80 guests", Capacity: 80, AvailableHoursStart: "10:00", AvailableHoursEnd: "23:00", IsActive: true}
	gym := commonareas.CommonArea{ID: "area-gym", Name: "Gym", Capacity: 12, AvailableHoursStart: "06:00", AvailableHoursEnd: "22:00", IsActive: true}
	pool := commonareas.CommonArea{ID: "area-pool", Name: "Pool", Description: "Closed for maintenance", Capacity: 30, IsActive: false}
	for _, a := range []commonareas.CommonArea{partyHall, gym, pool} {
		a.TenantID, a.CreatedAt, a.UpdatedAt = SeedTenantID, stamp, stamp
		s.areas.put(a.ID, a)
	}

	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(time.DateOnly) }
	resident := SeedResident.User
	for _, r := range []reservations.Reservation{
		{ID: "res-past", CommonAreaID: partyHall.ID, CommonAreaName: partyHall.Name, ReservationDate: day(-3), StartTime: "18:00", EndTime: "22:00", Status: reservations.StatusCompleted, GuestsCount: 40},
		{ID: "res-soon", CommonAreaID: partyHall.ID, CommonAreaName: partyHall.Name, ReservationDate: day(2), StartTime: "18:00", EndTime: "22:00", Status: reservations.StatusConfirmed, GuestsCount: 25, Notes: "Birthday"},
		{ID: "res-gym", CommonAreaID: gym.ID, CommonAreaName: gym.Name, ReservationDate: day(5), StartTime: "07:00", EndTime: "08:00", Status: reservations.StatusPending},
		{ID: "res-cancelled", CommonAreaID: gym.ID, CommonAreaName: gym.Name, ReservationDate: day(1), StartTime: "07:00", EndTime: "08:00", Status: reservations.StatusCancelled},
	} {
		r.TenantID, r.UserID, r.UserName = SeedTenantID, resident.ID, resident.FullName
		r.UnitID, r.UnitNumber = resident.UnitID, "101"
		r.CreatedAt, r.UpdatedAt = stamp, stamp
		s.reservations.put(r.ID, r)
	}

	for i, n := range []notifications.Notification{
		{ID: "notif-welcome", Title: "Welcome", Message: "Your account is ready.", Type: notifications.TypeSuccess},
		{ID: "notif-water", Title: "Water shutdown", Message: "Water will be off on Friday from 9:00 to 12:00.", Type: notifications.TypeWarning, Priority: notifications.PriorityHigh},
		{ID: "notif-meeting", Title: "General meeting", Message: "The annual meeting minutes are available.", Status: notifications.StatusRead, IsRead: true},
	} {
		n.TenantID = SeedTenantID
		n.CreatedAt = now.Add(-time.Duration(3-i) * time.Hour).Format(time.RFC3339)
		s.notify(n)
	}

	regulation := []byte("Quiet hours are from 22:00 to 07:00.\nPets must be kept on a leash in common areas.\n")
	minutes := []byte("Annual meeting: budget approved, pool maintenance scheduled.\n")
	for _, d := range []struct {
		doc  documents.Document
		data []byte
	}{
		{documents.Document{ID: "doc-regulation", Name: "internal-regulation.txt", Description: "Condominium internal regulation, quiet hours and pets", Category: documents.CategoryRegulation, IsPublic: true, Tags: []string{"rules"}}, regulation},
		{documents.Document{ID: "doc-minutes", Name: "meeting-minutes.txt", Description: "Annual general meeting minutes", Category: documents.CategoryMeetingMinutes, IsPublic: false}, minutes},
	} {
		doc := d.doc
		doc.TenantID, doc.Status = SeedTenantID, documents.StatusActive
		doc.UploadedBy, doc.UploaderName = SeedAdmin.User.ID, SeedAdmin.User.FullName
		doc.FileSize, doc.FileType, doc.DocumentType = int64(len(d.data)), "text/plain; charset=utf-8", "txt"
		doc.FilePath = "uploads/" + SeedTenantID + "/" + doc.ID + ".txt"
		doc.CreatedAt, doc.UpdatedAt = stamp, stamp
		s.documents.put(doc.ID, doc)
		s.files.put(doc.ID, d.data)
	}

	s.log.Debug().Str("tenant", SeedTenantID).Msg("seeded demo data")
	return nil
}
