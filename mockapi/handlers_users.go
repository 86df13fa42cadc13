package mockapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-condo-client/internal/utils"
	"github.com/jrsteele09/go-condo-client/users"
)

func nowString() string {
	return NowTimeFunc().UTC().Format(time.RFC3339)
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	}
}

// ListUsersHandler pages when page or limit is given and returns a bare
// array otherwise, as the API does.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		role := q.Get("role")
		search := strings.ToLower(q.Get("search"))
		var active *bool
		if v := q.Get("is_active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeValidation(w, validationIssue{Loc: []string{"query", "is_active"}, Msg: "Input should be a valid boolean", Type: "bool_parsing"})
				return
			}
			active = &b
		}

		list := s.users.List(tenantOf(r), func(u users.User) bool {
			if role != "" && string(u.Role) != role {
				return false
			}
			if active != nil && u.IsActive != *active {
				return false
			}
			if search != "" && !strings.Contains(strings.ToLower(u.Email+" "+u.FullName), search) {
				return false
			}
			return true
		})
		writeList(w, r, list)
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUser(r, r.PathValue("id"))
		if !ok {
			notFound(w, "User")
			return
		}
		if me := currentUser(r); !me.IsAdmin() && me.ID != u.ID {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type createUserBody struct {
	users.CreateUserInput
	IsActive *bool `json:"is_active,omitempty"`
}

func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in createUserBody
		if !decodeJSON(w, r, &in) {
			return
		}
		var issues []validationIssue
		if in.Email == "" {
			issues = append(issues, missingField("body", "email"))
		}
		if in.Password == "" {
			issues = append(issues, missingField("body", "password"))
		}
		if in.Role == "" {
			issues = append(issues, missingField("body", "role"))
		}
		if len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}
		if existing := s.users.List("", func(u users.User) bool { return strings.EqualFold(u.Email, in.Email) }); len(existing) > 0 {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}

		now := nowString()
		u, err := s.users.Upsert(users.User{
			Email:     in.Email,
			FullName:  in.FullName,
			Role:      in.Role,
			TenantID:  tenantOf(r),
			IsActive:  in.IsActive == nil || utils.Value(in.IsActive),
			CPF:       in.CPF,
			Phone:     in.Phone,
			UnitID:    in.UnitID,
			CreatedAt: now,
			UpdatedAt: now,
		}, in.Password)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// UpdateUserHandler lets administrators edit anyone. Other users may edit
// their own profile but not their active state.
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUser(r, r.PathValue("id"))
		if !ok {
			notFound(w, "User")
			return
		}
		me := currentUser(r)
		if !me.IsAdmin() && me.ID != u.ID {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}

		var in users.UpdateUserInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.FullName != nil {
			u.FullName = *in.FullName
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.UnitID != nil {
			u.UnitID = *in.UnitID
		}
		if in.IsActive != nil && me.IsAdmin() {
			u.IsActive = *in.IsActive
		}
		u.UpdatedAt = nowString()

		saved, err := s.users.Upsert(u, "")
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUser(r, r.PathValue("id"))
		if !ok {
			notFound(w, "User")
			return
		}
		_ = s.users.Delete(u.ID)
		writeNoContent(w)
	}
}

func (s *Server) SetUserActiveHandler(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUser(r, r.PathValue("id"))
		if !ok {
			notFound(w, "User")
			return
		}
		u.IsActive = active
		u.UpdatedAt = nowString()
		saved, err := s.users.Upsert(u, "")
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// ResetPasswordHandler sets the password from {"new_password"} when given,
// otherwise generates a temporary one and returns it.
func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.tenantUser(r, r.PathValue("id"))
		if !ok {
			notFound(w, "User")
			return
		}

		var body struct {
			NewPassword string `json:"new_password"`
		}
		if r.ContentLength != 0 && !decodeJSON(w, r, &body) {
			return
		}
		password := body.NewPassword
		if password == "" {
			b := make([]byte, 6)
			if _, err := rand.Read(b); err != nil {
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			password = hex.EncodeToString(b)
		}

		if _, err := s.users.Upsert(u, password); err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if body.NewPassword != "" {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
			return
		}
		writeJSON(w, http.StatusOK, users.ResetPasswordResponse{TemporaryPassword: password})
	}
}

func (s *Server) tenantUser(r *http.Request, id string) (users.User, bool) {
	u, err := s.users.GetByID(id)
	if err != nil || u.TenantID != tenantOf(r) {
		return users.User{}, false
	}
	return u, true
}

// writeList answers with the page envelope when the caller asked for a page.
func writeList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("limit") == "" {
		writeJSON(w, http.StatusOK, items)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total := len(items)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items[start:end],
		"total": total,
		"page":  page,
		"limit": limit,
		"pages": (total + limit - 1) / limit,
	})
}
