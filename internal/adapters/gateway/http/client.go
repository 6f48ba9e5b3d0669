package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

const (
	DefaultTimeout            = 30 * time.Second
	DefaultRetryAfterFallback = 60 * time.Second
	// MaxRetryAfter bounds any server-requested wait.
	MaxRetryAfter = 24 * time.Hour
)

type Options struct {
	Headers map[string]string
	// Timeout applies to requests that carry no timeout of their own.
	Timeout time.Duration
	// RetryAfterFallback is used for a 429 without a usable Retry-After.
	RetryAfterFallback time.Duration
	Logger             *zap.Logger
}

// Gateway is the resty-backed platform client of a single account.
type Gateway struct {
	client  *resty.Client
	options Options
	now     func() time.Time
}

var _ ports.Gateway = (*Gateway)(nil)

type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// New builds a gateway whose every call egresses through proxyURL. An empty
// proxyURL connects directly.
func New(options Options, proxyURL string) (*Gateway, error) {
	if options.Headers == nil {
		options.Headers = DefaultHeaders()
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.RetryAfterFallback <= 0 {
		options.RetryAfterFallback = DefaultRetryAfterFallback
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	client := resty.New().
		SetHeaders(options.Headers).
		SetRetryCount(0).
		SetDisableWarn(true).
		SetLogger(options.Logger.Sugar())

	if err := applyProxy(client, proxyURL); err != nil {
		return nil, err
	}

	return &Gateway{client: client, options: options, now: time.Now}, nil
}

// NewFactory returns a factory that builds one gateway per proxy.
func NewFactory(options Options) ports.GatewayFactory {
	return func(proxyURL string) (ports.Gateway, error) {
		return New(options, proxyURL)
	}
}

func applyProxy(client *resty.Client, proxyURL string) error {
	if strings.TrimSpace(proxyURL) == "" {
		return nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("parse proxy %s: %w", domain.ProxyHost(proxyURL), err)
	}

	switch parsed.Scheme {
	case "http", "https":
		client.SetProxy(parsed.String())
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			return fmt.Errorf("build socks dialer for %s: %w", domain.ProxyHost(proxyURL), err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks dialer for %s does not support contexts", domain.ProxyHost(proxyURL))
		}
		transport := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
		transport.Proxy = nil
		transport.DialContext = contextDialer.DialContext
		client.SetTransport(transport)
	default:
		return fmt.Errorf("unsupported proxy scheme %q", parsed.Scheme)
	}

	return nil
}

// Call posts req and validates the body: it must be JSON carrying a "code"
// that is zero or positive.
func (g *Gateway) Call(ctx context.Context, req domain.APIRequest) (domain.APIResponse, error) {
	resp, body, err := g.post(ctx, req)
	if err != nil {
		return domain.APIResponse{}, err
	}

	if body.Code == nil {
		return domain.APIResponse{}, &domain.InvalidResponseError{Endpoint: req.Endpoint, Reason: "missing code"}
	}
	if *body.Code < 0 {
		return domain.APIResponse{}, &domain.InvalidResponseError{Endpoint: req.Endpoint, Reason: fmt.Sprintf("negative code %d", *body.Code)}
	}

	return resp, nil
}

// Post posts req and only requires a JSON body.
func (g *Gateway) Post(ctx context.Context, req domain.APIRequest) (domain.APIResponse, error) {
	resp, _, err := g.post(ctx, req)
	return resp, err
}

func (g *Gateway) post(ctx context.Context, req domain.APIRequest) (domain.APIResponse, envelope, error) {
	if err := ctx.Err(); err != nil {
		return domain.APIResponse{}, envelope{}, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = g.options.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	res, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(req.Token).
		SetBody(payload).
		Post(req.Endpoint)
	if err != nil {
		return domain.APIResponse{}, envelope{}, &domain.TransientError{Endpoint: req.Endpoint, Err: unwrapURLError(err)}
	}

	switch status := res.StatusCode(); {
	case status == nethttp.StatusForbidden:
		return domain.APIResponse{}, envelope{}, &domain.AuthOrBlockError{Endpoint: req.Endpoint, StatusCode: status}
	case status == nethttp.StatusTooManyRequests:
		return domain.APIResponse{}, envelope{}, &domain.RateLimitError{
			Endpoint:   req.Endpoint,
			RetryAfter: g.retryAfter(res.Header().Get("Retry-After")),
		}
	case status != nethttp.StatusOK:
		return domain.APIResponse{}, envelope{}, &domain.TransientError{Endpoint: req.Endpoint, StatusCode: status}
	}

	var body envelope
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return domain.APIResponse{}, envelope{}, &domain.InvalidResponseError{Endpoint: req.Endpoint, Reason: fmt.Sprintf("decode body: %v", err)}
	}

	return domain.APIResponse{
		StatusCode: res.StatusCode(),
		Code:       body.Code,
		Message:    body.Message,
		Data:       body.Data,
		Success:    body.Success,
	}, body, nil
}

// retryAfter reads a Retry-After value given in seconds or as an HTTP date,
// capped at MaxRetryAfter.
func (g *Gateway) retryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return g.options.RetryAfterFallback
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return g.options.RetryAfterFallback
		}
		if seconds > int(MaxRetryAfter/time.Second) {
			return MaxRetryAfter
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := nethttp.ParseTime(value); err == nil {
		return min(max(at.Sub(g.now()), 0), MaxRetryAfter)
	}

	return g.options.RetryAfterFallback
}

// unwrapURLError drops the *url.Error wrapper, whose message repeats the
// endpoint already carried by TransientError.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}

	return err
}

func canonicalHeaderKey(key string) string {
	return textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key))
}
