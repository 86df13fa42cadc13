package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

const (
	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"
)

// Request is one logical API call. The body is held as bytes so the refresh
// coordinator can replay it unchanged.
type Request struct {
	Method      string
	Path        string // relative to the versioned base URL, e.g. "/units"
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string

	// Token, when set, is sent instead of the session's access token and the
	// request is not eligible for a refresh.
	Token string

	// SkipRefresh returns a 401 to the caller as-is. Used by the credential
	// endpoints, whose 401 means "bad credentials", not "expired session".
	SkipRefresh bool

	retried bool
}

// NewRequest builds a request without a body.
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path}
}

// NewJSONRequest builds a request with body encoded as JSON. A nil body sends none.
func NewJSONRequest(method, path string, body any) (*Request, error) {
	req := NewRequest(method, path)
	if body == nil {
		return req, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body for %s %s: %w", method, path, err)
	}
	req.Body = b
	req.ContentType = contentTypeJSON
	return req, nil
}

// NewMultipartRequest builds a POST carrying form as multipart/form-data.
func NewMultipartRequest(path string, form *MultipartForm) (*Request, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode multipart body for %s: %w", path, err)
	}
	req := NewRequest(http.MethodPost, path)
	req.Body = body
	req.ContentType = contentType
	return req, nil
}

// WithQuery sets the query string and returns req for chaining.
func (r *Request) WithQuery(q url.Values) *Request {
	r.Query = q
	return r
}

// Retried reports whether this request is a replay after a token refresh.
func (r *Request) Retried() bool {
	return r.retried
}

func (r *Request) clone() *Request {
	c := *r
	if r.Header != nil {
		c.Header = r.Header.Clone()
	}
	if r.Query != nil {
		c.Query = url.Values{}
		for k, v := range r.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}
	return &c
}

// MultipartForm collects form fields and files, in order, for a multipart body.
type MultipartForm struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	file     io.Reader
}

func NewMultipartForm() *MultipartForm {
	return &MultipartForm{}
}

func (f *MultipartForm) AddField(name, value string) *MultipartForm {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// AddFile adds a file part. r is read when the form is encoded.
func (f *MultipartForm) AddFile(name, filename string, r io.Reader) *MultipartForm {
	f.parts = append(f.parts, formPart{name: name, filename: filename, file: r})
	return f
}

// Encode renders the form and returns the body with its Content-Type,
// including the boundary.
func (f *MultipartForm) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.file == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		fw, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, p.file); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", p.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out. Empty bodies decode to nothing.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
