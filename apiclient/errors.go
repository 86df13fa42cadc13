package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Fields     map[string][]string // validation messages keyed by field, when the server sent them
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errs.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	return StatusCode(err) == status
}

// IsUnauthorized reports whether err is a 401, including one that ended the session.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func newAPIError(req *Request, resp *Response) *APIError {
	msg, fields := parseErrorBody(resp.Body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Fields:     fields,
		Body:       resp.Body,
	}
}

// errorBody covers the two shapes the API uses: {"detail": "..."} and the
// validation form {"detail": [{"loc": [...], "msg": "..."}]}, plus {"message": "..."}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func parseErrorBody(body []byte) (string, map[string][]string) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(truncate(string(body), 200)), nil
	}

	if len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil {
			return detail, nil
		}
		var issues []validationIssue
		if err := json.Unmarshal(eb.Detail, &issues); err == nil && len(issues) > 0 {
			fields := make(map[string][]string)
			msgs := make([]string, 0, len(issues))
			for _, issue := range issues {
				field := fieldName(issue.Loc)
				fields[field] = append(fields[field], issue.Msg)
				msgs = append(msgs, field+": "+issue.Msg)
			}
			return strings.Join(msgs, "; "), fields
		}
	}
	return eb.Message, nil
}

// fieldName drops the "body"/"query" location prefix FastAPI puts first.
func fieldName(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, l := range loc {
		s := fmt.Sprint(l)
		if i == 0 && (s == "body" || s == "query" || s == "path") && len(loc) > 1 {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
