// Package client is a typed HTTP client for the booking API. The web UI talks
// to the API only through it.
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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/slot-booking-api/internal/dto"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// FieldMessages flattens the validation messages ordered by field name.
func (e *APIError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.Fields[k]...)
	}
	return out
}

// TransportError means the API could not be reached or answered garbage.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err came from the network rather than the API.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client calls the booking API rooted at baseURL (including the version prefix).
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends token as the bearer identity on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New builds a client with a 5s timeout unless overridden.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AvailableSlots lists open slots for date.
func (c *Client) AvailableSlots(ctx context.Context, date string) (*dto.AvailableSlotsResponse, error) {
	var out dto.AvailableSlotsResponse
	if err := c.do(ctx, http.MethodGet, "/available-slots?"+dateQuery(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookSlot books a slot for a visitor.
func (c *Client) BookSlot(ctx context.Context, req dto.BookSlotRequest) (*dto.BookSlotResponse, error) {
	var out dto.BookSlotResponse
	if err := c.do(ctx, http.MethodPost, "/book-slot", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSlots creates slot windows for a date as the token's owner.
func (c *Client) CreateSlots(ctx context.Context, req dto.CreateSlotsRequest) (*dto.CreateSlotsResponse, error) {
	var out dto.CreateSlotsResponse
	if err := c.do(ctx, http.MethodPost, "/create-slots", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bookings lists bookings on date.
func (c *Client) Bookings(ctx context.Context, date string) (*dto.BookingsResponse, error) {
	var out dto.BookingsResponse
	if err := c.do(ctx, http.MethodGet, "/bookings?"+dateQuery(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBooking deletes a booking, freeing its slot.
func (c *Client) CancelBooking(ctx context.Context, id int64) (*dto.CancelBookingResponse, error) {
	var out dto.CancelBookingResponse
	if err := c.do(ctx, http.MethodDelete, "/bookings/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestReminder queues a reminder for a booking.
func (c *Client) RequestReminder(ctx context.Context, id int64) (*dto.ReminderResponse, error) {
	var out dto.ReminderResponse
	path := "/bookings/" + strconv.FormatInt(id, 10) + "/reminders"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportURL is the download link for a bookings export.
func (c *Client) ExportURL(date, format string) string {
	q := url.Values{}
	q.Set("date", date)
	if format != "" {
		q.Set("format", format)
	}
	return c.baseURL + "/bookings/export?" + q.Encode()
}

type forwardedForKey struct{}

// WithForwardedFor marks calls made with ctx as acting for the end user at ip.
// The address travels in X-Forwarded-For so the API can rate limit per visitor.
func WithForwardedFor(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, forwardedForKey{}, ip)
}

// ForwardedFor returns the address stored by WithForwardedFor.
func ForwardedFor(ctx context.Context) string {
	ip, _ := ctx.Value(forwardedForKey{}).(string)
	return ip
}

func dateQuery(date string) string {
	return url.Values{"date": {date}}.Encode()
}

type errorEnvelope struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if ip := ForwardedFor(ctx); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env errorEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Fields: env.Errors}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
