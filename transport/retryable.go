package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-resources/core"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

const KindRetryable = "retryable"

const defaultRetryWait = 500 * time.Millisecond

type RetryConfig struct {
	RetryMax int
	WaitMin  time.Duration
	WaitMax  time.Duration
	Timeout  time.Duration
	Logger   core.Logger
}

// NewRetryingDoer returns an http client that retries connection failures
// and 5xx/429 responses. POST and PATCH are not retried on 5xx, the remote
// may already have applied them. Once retries are exhausted the last
// response is handed back as-is, so remote failures still reach the caller
// as a status.
func NewRetryingDoer(cfg RetryConfig) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.WaitMin > 0 {
		client.RetryWaitMin = cfg.WaitMin
	} else {
		client.RetryWaitMin = defaultRetryWait
	}
	if cfg.WaitMax > 0 {
		client.RetryWaitMax = cfg.WaitMax
	}
	if client.RetryWaitMax < client.RetryWaitMin {
		client.RetryWaitMax = client.RetryWaitMin
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	client.CheckRetry = idempotentRetryPolicy
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Logger != nil {
		client.Logger = retryablehttp.LeveledLogger(cfg.Logger)
	} else {
		client.Logger = nil
	}
	return client.StandardClient()
}

// NewRetryingAdapter is a REST adapter whose client is a retrying doer.
func NewRetryingAdapter(cfg RetryConfig) *RESTAdapter {
	adapter := NewRESTAdapter(NewRetryingDoer(cfg))
	adapter.kind = KindRetryable
	return adapter
}

func idempotentRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode >= http.StatusInternalServerError && resp.Request != nil {
		switch resp.Request.Method {
		case http.MethodPost, http.MethodPatch:
			return false, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
