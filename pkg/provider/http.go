package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/record"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single provider HTTP call.
const DefaultTimeout = 5 * time.Second

const defaultUserAgent = "bizsearch/0.1"

// HTTPConfig holds the transport settings shared by HTTP providers.
type HTTPConfig struct {
	// BaseURL overrides the provider's public endpoint (tests, proxies).
	BaseURL string

	// Timeout per HTTP call. Timeouts surface as ErrProviderUnavailable.
	Timeout time.Duration

	// UserAgent header sent with every request.
	UserAgent string

	// Retry controls in-place retries of transient failures.
	Retry RetryConfig
}

// httpClient is the resty-backed transport every provider builds on.
type httpClient struct {
	source record.Source
	rest   *resty.Client
	retry  RetryConfig
	logger zerolog.Logger
}

func newHTTPClient(source record.Source, defaultBaseURL string, cfg HTTPConfig) *httpClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &httpClient{
		source: source,
		rest:   rest,
		retry:  retry,
		logger: logging.NewLogger("provider").With().Str("source", string(source)).Logger(),
	}
}

// getJSON performs a GET with retries and decodes the body into out.
// check, when non-nil, inspects the decoded payload for in-band errors
// (APIs that answer 200 with an error status).
func (c *httpClient) getJSON(ctx context.Context, path string, params, headers map[string]string, out any, check func() error) error {
	src := string(c.source)
	start := time.Now()
	defer func() {
		providerRequestDuration.WithLabelValues(src).Observe(time.Since(start).Seconds())
	}()

	return withRetry(ctx, c.retry, c.source, c.logger, func() error {
		resp, err := c.rest.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetHeaders(headers).
			Get(path)
		if err != nil {
			return c.fail(&ProviderError{
				Source:  c.source,
				Class:   ErrorClassNetwork,
				Message: "request failed",
				Err:     err,
			}, "network_error")
		}

		status := resp.StatusCode()
		if status >= http.StatusBadRequest {
			return c.fail(&ProviderError{
				Source:     c.source,
				Class:      classifyStatus(status),
				StatusCode: status,
				Message:    resp.Status(),
			}, strconv.Itoa(status))
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return c.fail(&ProviderError{
				Source:     c.source,
				Class:      ErrorClassPayload,
				StatusCode: status,
				Message:    "decode response",
				Err:        err,
			}, "decode_error")
		}

		if check != nil {
			if err := check(); err != nil {
				var pe *ProviderError
				if errors.As(err, &pe) {
					return c.fail(pe, string(pe.Class))
				}
				return err
			}
		}

		providerRequestsTotal.WithLabelValues(src, strconv.Itoa(status)).Inc()
		return nil
	})
}

// fail records and logs a classified failure and returns it.
func (c *httpClient) fail(pe *ProviderError, status string) error {
	providerRequestsTotal.WithLabelValues(string(c.source), status).Inc()
	providerErrorsTotal.WithLabelValues(string(c.source), string(pe.Class)).Inc()

	c.logger.Warn().
		Err(pe.Err).
		Int("status", pe.StatusCode).
		Str("error_class", string(pe.Class)).
		Msg(pe.Message)

	return pe
}

// classifyStatus categorizes an HTTP status for handling and observability.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}
