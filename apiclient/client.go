// Package apiclient talks to the notes HTTP API. Client satisfies the same
// contract as the in-process notes service, so the client cache can sit on
// either.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quicknotes/dto"
	"quicknotes/model"
	"quicknotes/usecase"
)

// APIError is a failure response that maps to no note error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notes api: %d %s", e.Status, e.Message)
}

// TokenSource returns the access token sent with each request. An empty
// token sends the request anonymously.
type TokenSource func(ctx context.Context) (string, error)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return WithTokenSource(func(context.Context) (string, error) { return token, nil })
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data,omitempty"`
}

func (c *Client) List(ctx context.Context) ([]*model.Note, error) {
	return c.ListByCategory(ctx, "")
}

func (c *Client) ListByCategory(ctx context.Context, filter string) ([]*model.Note, error) {
	path := "/api/notes"
	if filter != "" {
		path += "?category=" + url.QueryEscape(filter)
	}

	var out envelope[dto.NotesListResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	notes := make([]*model.Note, len(out.Data.Notes))
	for i, n := range out.Data.Notes {
		notes[i] = n.ToModel()
	}
	return notes, nil
}

func (c *Client) Get(ctx context.Context, noteID string) (*model.Note, error) {
	var out envelope[dto.NoteResponse]
	if err := c.do(ctx, http.MethodGet, notePath(noteID), nil, &out); err != nil {
		return nil, err
	}
	return out.Data.ToModel(), nil
}

func (c *Client) Create(ctx context.Context, input model.CreateNoteInput) (*model.Note, error) {
	body := dto.CreateNoteRequest{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
	}

	var out envelope[dto.NoteResponse]
	if err := c.do(ctx, http.MethodPost, "/api/notes", body, &out); err != nil {
		return nil, err
	}
	return out.Data.ToModel(), nil
}

func (c *Client) Update(ctx context.Context, input model.UpdateNoteInput) (*model.Note, error) {
	body := dto.UpdateNoteRequest{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
	}

	var out envelope[dto.NoteResponse]
	if err := c.do(ctx, http.MethodPatch, notePath(input.ID), body, &out); err != nil {
		return nil, err
	}
	return out.Data.ToModel(), nil
}

func (c *Client) Delete(ctx context.Context, noteID string) error {
	return c.do(ctx, http.MethodDelete, notePath(noteID), nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]model.CategoryInfo, error) {
	var out envelope[[]model.CategoryInfo]
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Session(ctx context.Context) (*dto.SessionResponse, error) {
	var out envelope[dto.SessionResponse]
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/session/logout", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", usecase.ErrUnauthenticated, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure envelope[json.RawMessage]
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return statusError(resp.StatusCode, failure.Error)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, message string) error {
	switch status {
	case http.StatusUnauthorized:
		return usecase.ErrUnauthenticated
	case http.StatusNotFound:
		return usecase.ErrNotFoundOrUnauthorized
	case http.StatusBadRequest:
		message = strings.TrimPrefix(message, usecase.ErrInvalidInput.Error()+": ")
		if message == "" {
			return usecase.ErrInvalidInput
		}
		return fmt.Errorf("%w: %s", usecase.ErrInvalidInput, message)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: message}
}

func notePath(noteID string) string {
	return "/api/notes/" + url.PathEscape(noteID)
}
