package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
)

// ErrUnexpectedStatus is returned when the server answers with a status the
// client does not handle.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Outcome classifies one check-in submission.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeDuplicate
	OutcomeRejected
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Client talks to the triagem HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// CloseEvent clears the current event through POST /event/close.
func (c *Client) CloseEvent(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/event/close", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: close returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

// Checkin submits one registration through POST /attendees.
func (c *Client) Checkin(ctx context.Context, r model.Registration) (Outcome, error) {
	resp, err := c.do(ctx, http.MethodPost, "/attendees", r)
	if err != nil {
		return OutcomeFailed, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return OutcomeAccepted, nil
	case http.StatusOK:
		var ack AckResponse
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return OutcomeFailed, fmt.Errorf("decode ack: %w", err)
		}
		if ack.Duplicate {
			return OutcomeDuplicate, nil
		}
		return OutcomeAccepted, nil
	case http.StatusTooManyRequests:
		return OutcomeRejected, nil
	default:
		return OutcomeFailed, fmt.Errorf("%w: checkin returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}

// Summary fetches GET /summary.
func (c *Client) Summary(ctx context.Context) (aggregate.Summary, error) {
	var sum aggregate.Summary
	resp, err := c.do(ctx, http.MethodGet, "/summary", nil)
	if err != nil {
		return sum, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return sum, fmt.Errorf("%w: summary returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		return sum, fmt.Errorf("decode summary: %w", err)
	}
	return sum, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
