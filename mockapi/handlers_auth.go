package mockapi

import (
	"errors"
	"net/http"

	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/users"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// LoginHandler takes the OAuth2 password form (multipart or urlencoded).
// The email travels in "username".
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: "Invalid form body", Type: "value_error"})
			return
		}

		username, password := r.FormValue("username"), r.FormValue("password")
		var issues []validationIssue
		if username == "" {
			issues = append(issues, missingField("body", "username"))
		}
		if password == "" {
			issues = append(issues, missingField("body", "password"))
		}
		if len(issues) > 0 {
			writeValidation(w, issues...)
			return
		}

		user, err := s.users.Authenticate(username, password)
		switch {
		case errs.Is(err, errs.ErrUserInactive):
			writeDetail(w, http.StatusBadRequest, "Inactive user")
			return
		case err != nil:
			writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}

		s.issueTokens(w, &user)
	}
}

// RefreshHandler rotates the refresh token: the one presented stops working.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.RefreshToken == "" {
			writeValidation(w, missingField("body", "refresh_token"))
			return
		}

		stored, next, err := s.refresh.Rotate(body.RefreshToken)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		user, err := s.users.GetByID(stored.UserID)
		if err != nil || !user.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		access, err := s.tokens.CreateAccessToken(&user)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to create access token")
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: next, TokenType: "bearer"})
	}
}

func (s *Server) issueTokens(w http.ResponseWriter, user *users.User) {
	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create access token")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	refreshToken, err := s.refresh.Create(user.ID, user.TenantID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create refresh token")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refreshToken, TokenType: "bearer"})
}
