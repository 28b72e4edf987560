// Package mirai is a client for the mirai-api-http gateway.
//
// A Client talks to one gateway. Auth opens a Session, which is bound to a
// logged-in bot account with Verify and released with Release or Close:
//
//	client, err := mirai.NewClient(mirai.Config{BaseURL: "http://localhost:8080"})
//	session, err := client.Auth(ctx, authKey)
//	err = session.Verify(ctx, 10001)
//	defer session.Close(ctx)
//
//	id, err := session.SendMessage(ctx, message.GroupChannel(42), message.Text("hello"))
//
// Every operation returns *Error, classified by ErrorKind. Non-zero gateway
// status codes are wrapped as *APIError; use IsCode to test for one.
package mirai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the gateway address, e.g. "http://localhost:8080".
	BaseURL string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient replaces the default transport when set.
	HTTPClient *http.Client
	// Logger receives request logs. Nil disables logging.
	Logger *zerolog.Logger
	// Debug dumps requests and responses to the logger.
	Debug bool
}

// Client is a connection to one gateway. It is safe for concurrent use.
type Client struct {
	rest    *resty.Client
	baseURL *url.URL
	logger  zerolog.Logger
}

// NewClient creates a client for the gateway at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, clientErrorf("NewClient", "base url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, clientErrorf("NewClient", "invalid base url %q", cfg.BaseURL)
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "mirai").Logger()
	}

	var rest *resty.Client
	if cfg.HTTPClient != nil {
		rest = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rest = resty.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rest.SetHostURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetLogger(&restyLogger{logger: &logger}).
		SetDebug(cfg.Debug)

	return &Client{
		rest:    rest,
		baseURL: u,
		logger:  logger,
	}, nil
}

// BaseURL returns the gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// AboutResponse is the answer of the /about endpoint.
type AboutResponse struct {
	Code Code      `json:"code"`
	Data AboutData `json:"data"`
}

// AboutData describes the gateway plugin.
type AboutData struct {
	Version string `json:"version"`
}

// About returns the gateway version. It needs no session.
func (c *Client) About(ctx context.Context) (*AboutResponse, error) {
	var resp AboutResponse
	if err := c.get(ctx, "About", "/about", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WaitReady calls About until the gateway answers or ctx is done, backing off
// exponentially between attempts.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) (*AboutResponse, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait

	var about *AboutResponse
	err := backoff.RetryNotify(func() error {
		resp, err := c.About(ctx)
		if err != nil {
			return err
		}
		about = resp
		return nil
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Dur("retryIn", wait).Msg("Gateway not ready")
	})
	if err != nil {
		return nil, err
	}
	return about, nil
}

// Auth exchanges the gateway auth key for a new session.
func (c *Client) Auth(ctx context.Context, authKey string) (*Session, error) {
	if authKey == "" {
		return nil, clientErrorf("Auth", "auth key is required")
	}

	var resp struct {
		Session string `json:"session"`
	}
	body := map[string]string{"authKey": authKey}
	if err := c.post(ctx, "Auth", "/auth", body, &resp); err != nil {
		return nil, err
	}
	if resp.Session == "" {
		return nil, serverError("Auth", fmt.Errorf("gateway returned an empty session key"))
	}

	c.logger.Info().Msg("Session authorized")
	return c.Resume(resp.Session), nil
}

// Resume wraps an existing session key without contacting the gateway. The
// returned session is not bound.
func (c *Client) Resume(key string) *Session {
	return &Session{
		client: c,
		key:    key,
	}
}

// RunCommand runs a console command on the gateway host and returns the raw
// response text.
//
// Deprecated: newer gateways remove /command/send.
func (c *Client) RunCommand(ctx context.Context, authKey, name string, args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	body := map[string]any{
		"authKey": authKey,
		"name":    name,
		"args":    args,
	}

	resp, err := c.execute(c.rest.R().SetContext(ctx).SetBody(body), http.MethodPost, "/command/send", "Command")
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

func (c *Client) get(ctx context.Context, op, path string, query map[string]string, out any) error {
	req := c.rest.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return c.call(req, http.MethodGet, path, op, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	req := c.rest.R().SetContext(ctx).SetBody(body)
	return c.call(req, http.MethodPost, path, op, out)
}

// call executes req, checks the status code when the response is an object
// carrying one, and decodes the body into out.
func (c *Client) call(req *resty.Request, method, path, op string, out any) error {
	resp, err := c.execute(req, method, path, op)
	if err != nil {
		return err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) > 0 && body[0] == '{' {
		var status struct {
			Code *Code  `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return serverError(op, fmt.Errorf("decode response: %w", err))
		}
		if status.Code != nil {
			if err := checkCode(*status.Code, op, status.Msg); err != nil {
				return err
			}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return serverError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) execute(req *resty.Request, method, path, op string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, serverError(op, err)
	}

	c.logger.Debug().
		Str("op", op).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("latency", resp.Time()).
		Msg("Gateway request")

	if resp.IsError() {
		return nil, serverError(op, &HTTPError{StatusCode: resp.StatusCode(), Body: resp.String()})
	}
	return resp, nil
}

// restyLogger routes resty's internal logging to zerolog.
type restyLogger struct {
	logger *zerolog.Logger
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
