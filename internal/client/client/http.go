package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
)

const maxErrorBody = 64 << 10

// TokenFunc returns the current bearer token, or "" when logged out.
type TokenFunc func() string

type Option func(*Transport)

func WithHTTPClient(hc *http.Client) Option {
	return func(t *Transport) { t.hc = hc }
}

func WithToken(fn TokenFunc) Option {
	return func(t *Transport) { t.token = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// Transport sends JSON requests and classifies failures. It is safe for
// concurrent use.
type Transport struct {
	hc    *http.Client
	token TokenFunc
	log   logging.Logger
}

func NewTransport(timeout time.Duration, opts ...Option) *Transport {
	t := &Transport{
		hc:    &http.Client{Timeout: timeout},
		token: func() string { return "" },
		log:   logging.Nop(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Do sends in (if non-nil) as the JSON body and decodes a non-empty 2xx
// response into out (if non-nil). Numbers are decoded as json.Number.
func (t *Transport) Do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := t.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}

	op := method + " " + url
	start := time.Now()
	resp, err := t.hc.Do(req)
	if err != nil {
		t.log.Debug(ctx, "request failed", "request_id", reqID, "op", op, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	t.log.Debug(ctx, "request done", "request_id", reqID, "op", op,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func serverError(resp *http.Response) *ServerError {
	se := &ServerError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return se
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		se.Message = payload.Message
	}
	return se
}

// HTTPClient is the ResourceClient for one descriptor.
type HTTPClient struct {
	t    *Transport
	desc *catalog.Descriptor
	url  string
}

var _ ResourceClient = (*HTTPClient)(nil)

// Resource binds the transport to the collection of d under baseURL.
func (t *Transport) Resource(baseURL string, d *catalog.Descriptor) *HTTPClient {
	return &HTTPClient{t: t, desc: d, url: strings.TrimRight(baseURL, "/") + d.Path}
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Record, error) {
	var raw []any
	if err := c.t.Do(ctx, http.MethodGet, c.url, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &DecodeError{Err: fmt.Errorf("%s item %d is not an object", c.desc.Name, i)}
		}
		out = append(out, models.Record(models.Normalize(m).(map[string]any)))
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, body map[string]any) (models.Record, error) {
	var raw any
	if err := c.t.Do(ctx, http.MethodPost, c.url, body, &raw); err != nil {
		return nil, err
	}
	if m, ok := models.Normalize(raw).(map[string]any); ok {
		return models.Record(m), nil
	}
	return nil, nil
}

func (c *HTTPClient) Update(ctx context.Context, key models.Key, body map[string]any) error {
	return c.t.Do(ctx, http.MethodPut, c.url+key.Path(), body, nil)
}

func (c *HTTPClient) Remove(ctx context.Context, key models.Key) error {
	err := c.t.Do(ctx, http.MethodDelete, c.url+key.Path(), nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
