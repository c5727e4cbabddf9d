package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response. Message carries the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// API talks to the notes server. The auth cookie is kept in a cookie jar,
// so one API value is one session.
type API struct {
	base *url.URL
	jar  http.CookieJar
	http *http.Client
}

func NewAPI(baseURL string) (*API, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &API{
		base: base,
		jar:  jar,
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

// Origin is the scheme and host the API points at.
func (a *API) Origin() string {
	return a.base.Scheme + "://" + a.base.Host
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base.String()+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (a *API) ListNotes(ctx context.Context) ([]Note, error) {
	var out struct {
		Notes []Note `json:"notes"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (a *API) GetNote(ctx context.Context, id string) (Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	err := a.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &out)
	return out.Note, err
}

func (a *API) CreateNote(ctx context.Context, in NoteInput) (Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	err := a.do(ctx, http.MethodPost, "/api/notes", in, &out)
	return out.Note, err
}

func (a *API) UpdateNote(ctx context.Context, in NoteInput) (Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	err := a.do(ctx, http.MethodPut, "/api/notes", in, &out)
	return out.Note, err
}

func (a *API) DeleteNote(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/notes?id="+url.QueryEscape(id), nil, nil)
}

func (a *API) BulkNotes(ctx context.Context, ids []string, op BulkOperation) error {
	body := struct {
		NoteIDs   []string      `json:"noteIds"`
		Operation BulkOperation `json:"operation"`
	}{ids, op}
	return a.do(ctx, http.MethodPost, "/api/notes/bulk", body, nil)
}

type userEnvelope struct {
	User User `json:"user"`
}

func (a *API) Me(ctx context.Context) (User, error) {
	var out userEnvelope
	err := a.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out.User, err
}

func (a *API) Login(ctx context.Context, c Credentials) (User, error) {
	var out userEnvelope
	err := a.do(ctx, http.MethodPost, "/api/auth/login", c, &out)
	return out.User, err
}

func (a *API) Signup(ctx context.Context, in SignupInput) (User, error) {
	var out userEnvelope
	err := a.do(ctx, http.MethodPost, "/api/auth/signup", in, &out)
	return out.User, err
}

func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (a *API) UpdateProfile(ctx context.Context, in ProfileInput) error {
	return a.do(ctx, http.MethodPut, "/api/auth/profile", in, nil)
}

func (a *API) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{current, next}
	return a.do(ctx, http.MethodPut, "/api/auth/password", body, nil)
}

func (a *API) DeleteProfile(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, "/api/auth/profile", nil, nil)
}
