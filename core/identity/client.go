package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// ErrUnavailable covers every way the identity service can fail to answer:
// transport errors, non-200 responses, malformed bodies, status=false and a
// missing data object.
var ErrUnavailable = errors.New("could not reach identity service")

// Config holds configuration for the identity service client.
type Config struct {
	// BaseURL is the scheme and host of the identity service.
	BaseURL string `mapstructure:"base_url" default:"https://rp.plo.su"`
	// ProfilePath is the path of the profile lookup endpoint.
	ProfilePath string `mapstructure:"profile_path" default:"/api/user/profile"`
	// TimeoutSeconds bounds one profile lookup.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}

// Profile is the part of the identity record the sync uses.
type Profile struct {
	// Nick is the canonical display name. Nil when the service has none.
	Nick      *string `json:"nick"`
	Banned    bool    `json:"banned"`
	BanReason string  `json:"ban_reason"`
}

type envelope struct {
	Status bool     `json:"status"`
	Data   *Profile `json:"data"`
}

// Client looks up canonical profiles by user id.
type Client struct {
	cfg     Config
	http    *fasthttp.Client
	timeout time.Duration
}

// NewClient creates an identity client with a pooled fasthttp client.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		cfg:     cfg,
		timeout: timeout,
		http: &fasthttp.Client{
			MaxConnsPerHost:           64,
			MaxIdleConnDuration:       90 * time.Second,
			ReadTimeout:               timeout,
			WriteTimeout:              timeout,
			MaxResponseBodySize:       1 << 20,
			MaxIdemponentCallAttempts: 1,
		},
	}
}

// Profile fetches the profile of userID. Every failure wraps ErrUnavailable.
// The request is bounded by the configured timeout or the context deadline,
// whichever comes first.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil || timeout <= 0 {
		if err == nil {
			err = context.DeadlineExceeded
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.BaseURL + c.cfg.ProfilePath)
	req.URI().QueryArgs().Set("discord_id", userID)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var body envelope
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %w", ErrUnavailable, err)
	}
	if !body.Status {
		return nil, fmt.Errorf("%w: status=false", ErrUnavailable)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrUnavailable)
	}

	return body.Data, nil
}
