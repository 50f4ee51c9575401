// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the gateway and reporter.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 250 * time.Millisecond

// maxRetryAfter caps a server-provided Retry-After so a misbehaving upstream
// cannot stall an interactive session.
const maxRetryAfter = 5 * time.Second

// Retryable reports whether a status code is worth retrying: 429 and 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// DoWithRetry executes req and retries up to maxRetries times when the
// response status is Retryable. Zero maxRetries sends the request once.
// The delay doubles from RetryBaseDelay (250ms, 500ms, 1s, ...) unless the
// response carries a Retry-After header in seconds.
//
// Transport errors are retried the same way unless ctx is done. Requests
// with a body must have GetBody set (http.NewRequest does this for bytes
// and strings readers). After exhausting retries the last response or
// transport error is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log zerolog.Logger) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			if ctx.Err() != nil || attempt >= maxRetries {
				return nil, err
			}
		} else if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		var (
			backoff time.Duration
			status  int
		)
		if resp != nil {
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			backoff = retryAfter(resp)
			status = resp.StatusCode
		}
		if backoff == 0 {
			backoff = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}
		log.Debug().
			Err(err).
			Str("url", req.URL.String()).
			Int("status", status).
			Dur("backoff", backoff).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Msg("retrying request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryAfter returns the Retry-After delay in seconds, capped, or zero.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}
