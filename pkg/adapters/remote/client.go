// Package remote implements the link store capability against the linkpage
// HTTP API, so a link manager can run on a machine without database access.
package remote

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

	"golang.org/x/oauth2"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

var _ ports.LinkStore = (*Client)(nil)

const defaultTimeout = 15 * time.Second

// Client talks to /api/v1 with a bearer session token. The owner id passed
// to its methods is ignored: the server derives it from the token.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The client must add authentication
// itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	hc := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = defaultTimeout

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields"`
}

type listBody struct {
	Data []domain.LinkEntry `json:"data"`
}

type createBody struct {
	domain.LinkInput
	Position int `json:"position"`
}

type reorderBody struct {
	Positions []domain.LinkPosition `json:"positions"`
}

func (c *Client) FetchLinks(ctx context.Context, pageID string) ([]domain.LinkEntry, error) {
	var out listBody
	if err := c.do(ctx, http.MethodGet, "/api/v1/pages/"+url.PathEscape(pageID)+"/links", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateLink(ctx context.Context, pageID, _ string, in domain.LinkInput, position int) (*domain.LinkEntry, error) {
	var out domain.LinkEntry
	body := createBody{LinkInput: in, Position: position}
	if err := c.do(ctx, http.MethodPost, "/api/v1/pages/"+url.PathEscape(pageID)+"/links", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLink(ctx context.Context, id, _ string, patch domain.LinkPatch) (*domain.LinkEntry, error) {
	var out domain.LinkEntry
	if err := c.do(ctx, http.MethodPatch, "/api/v1/links/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLink(ctx context.Context, id, _ string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/links/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ReorderLinks(ctx context.Context, positions []domain.LinkPosition, _ string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/links/order", reorderBody{Positions: positions}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// decodeError turns an API failure back into the domain taxonomy.
func decodeError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
	}
	if eb.Error == "" {
		eb.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if len(eb.Fields) > 0 {
			return &domain.ValidationError{Errors: eb.Fields}
		}
		return domain.NewValidationError("request", eb.Error)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", eb.Error, domain.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", eb.Error, domain.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", eb.Error, domain.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", eb.Error, domain.ErrAlreadyExists)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, eb.Error)
	}
}
