package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxBodyBytes = 10 << 20

// validationIssue matches the FastAPI 422 layout.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeDetail answers with {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, issues ...validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

func missingField(location, field string) validationIssue {
	return validationIssue{Loc: []string{location, field}, Msg: "Field required", Type: "missing"}
}

// decodeJSON reads the body into v, answering 422 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: "Field required", Type: "missing"})
		return false
	}
	writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: fmt.Sprintf("JSON decode error: %s", err), Type: "json_invalid"})
	return false
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
