package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"note-app/src/domain"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("note not found")
	ErrBadRequest   = errors.New("bad request")
)

// Filter はリスト取得時の絞り込み条件。
// ゼロ値は無条件（全件）を意味する。
type Filter struct {
	Topic      string
	Difficulty string
	Search     string
}

// Key returns the canonical cache partition key for this filter
func (f Filter) Key() string {
	if f == (Filter{}) {
		return UnfilteredKey
	}
	return f.query().Encode()
}

func (f Filter) query() url.Values {
	v := url.Values{}
	if f.Topic != "" {
		v.Set("topic", f.Topic)
	}
	if f.Difficulty != "" {
		v.Set("difficulty", f.Difficulty)
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}

// CreateNoteInput 作成リクエスト。4フィールドすべて必須。
type CreateNoteInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// UpdateNoteInput 部分更新リクエスト。nilのフィールドは変更しない。
type UpdateNoteInput struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Topic      *string `json:"topic,omitempty"`
	Difficulty *string `json:"difficulty,omitempty"`
}

// NotesAPI defines the server operations the coordinator depends on
type NotesAPI interface {
	ListNotes(ctx context.Context, filter Filter) ([]domain.Note, error)
	GetNote(ctx context.Context, id int) (*domain.Note, error)
	CreateNote(ctx context.Context, input CreateNoteInput) (*domain.Note, error)
	UpdateNote(ctx context.Context, id int, input UpdateNoteInput) (*domain.Note, error)
	DeleteNote(ctx context.Context, id int) (*domain.Note, error)
	RestoreNote(ctx context.Context, id int) (*domain.Note, error)
}

// Client はノートAPIのHTTPクライアント
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new API client for the given base URL
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// SetToken 認証トークンを設定
func (c *Client) SetToken(token string) {
	c.token = token
}

type noteEnvelope struct {
	Note domain.Note `json:"note"`
}

type listEnvelope struct {
	Notes []domain.Note `json:"notes"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// ListNotes fetches non-deleted notes matching the filter
func (c *Client) ListNotes(ctx context.Context, filter Filter) ([]domain.Note, error) {
	var env listEnvelope
	if err := c.get(ctx, "/api/notes", filter.query(), &env); err != nil {
		return nil, err
	}
	return env.Notes, nil
}

// GetNote fetches a single note by id
func (c *Client) GetNote(ctx context.Context, id int) (*domain.Note, error) {
	var env noteEnvelope
	if err := c.get(ctx, "/api/notes/"+strconv.Itoa(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Note, nil
}

// CreateNote creates a new note
func (c *Client) CreateNote(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	var env noteEnvelope
	if err := c.send(ctx, http.MethodPost, "/api/notes", input, &env); err != nil {
		return nil, err
	}
	return &env.Note, nil
}

// UpdateNote applies a partial update to a note
func (c *Client) UpdateNote(ctx context.Context, id int, input UpdateNoteInput) (*domain.Note, error) {
	var env noteEnvelope
	if err := c.send(ctx, http.MethodPatch, "/api/notes/"+strconv.Itoa(id), input, &env); err != nil {
		return nil, err
	}
	return &env.Note, nil
}

// DeleteNote soft-deletes a note; the returned note has Deleted=true
func (c *Client) DeleteNote(ctx context.Context, id int) (*domain.Note, error) {
	var env noteEnvelope
	if err := c.send(ctx, http.MethodDelete, "/api/notes/"+strconv.Itoa(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Note, nil
}

// RestoreNote restores a soft-deleted note
func (c *Client) RestoreNote(ctx context.Context, id int) (*domain.Note, error) {
	var env noteEnvelope
	if err := c.send(ctx, http.MethodPost, "/api/notes/"+strconv.Itoa(id)+"/restore", nil, &env); err != nil {
		return nil, err
	}
	return &env.Note, nil
}

// get 読み取りリクエストを実行。冪等なので通信エラー時は1回だけ再試行する。
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("読み取りに失敗、再試行します")
		resp, err = c.doRequest(ctx, http.MethodGet, path, query, nil)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return c.decodeResponse(resp, http.StatusOK, out)
}

// send 変更リクエストを実行。再試行はしない。
func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.doRequest(ctx, method, path, nil, payload)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	expected := http.StatusOK
	if method == http.MethodPost && path == "/api/notes" {
		expected = http.StatusCreated
	}
	return c.decodeResponse(resp, expected, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

func (c *Client) decodeResponse(resp *http.Response, expected int, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)

		err := statusToError(resp.StatusCode)
		if env.Error != "" {
			return fmt.Errorf("%w: %s", err, env.Error)
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusToError(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}
