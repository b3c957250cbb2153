// Package phonehome talks to the NethServer phone-home service and turns its
// answer into a worldwide installation total.
package phonehome

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the phone-home service queried for installation counts.
	DefaultEndpoint = "http://www.nethserver.org/phone-home/index.php?"

	// WidgetURL is the page opened when the badge is clicked.
	WidgetURL = "http://www.nethserver.org/phone-home/widget_map.html"

	// infoRequest is the form-encoded body asking the service for its summary.
	infoRequest = "method=get_info"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrTransport means the request could not complete.
	ErrTransport = errors.New("phone-home transport failure")

	// ErrParse means the response arrived but could not be decoded.
	ErrParse = errors.New("phone-home malformed response")
)

// Outcome classifies one fetch.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransportFailure
	OutcomeParseFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of one round trip to the service.
type Result struct {
	Outcome Outcome
	Total   int
	Entries int
	Err     error
}

// Client issues info requests against a phone-home endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for endpoint. A zero timeout uses DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs exactly one info request and classifies the result.
func (c *Client) Fetch(ctx context.Context) Result {
	body, err := c.post(ctx)
	if err != nil {
		return Result{
			Outcome: OutcomeTransportFailure,
			Err:     fmt.Errorf("%w: %w", ErrTransport, err),
		}
	}

	total, entries, err := Decode(body)
	if err != nil {
		return Result{Outcome: OutcomeParseFailure, Err: err}
	}

	return Result{
		Outcome: OutcomeSuccess,
		Total:   total,
		Entries: entries,
	}
}

func (c *Client) post(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(infoRequest))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
