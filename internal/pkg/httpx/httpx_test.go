package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type codeErr int

func (c codeErr) Error() string       { return fmt.Sprintf("status %d", int(c)) }
func (c codeErr) HTTPStatusCode() int { return int(c) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{context.DeadlineExceeded, true},
		{codeErr(503), true},
		{codeErr(429), true},
		{fmt.Errorf("wrapped: %w", codeErr(404)), false},
		{fmt.Errorf("wrapped: %w", codeErr(502)), true},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if got := RetryAfterDuration(resp, time.Second, 0); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	resp.Header.Set("Retry-After", "3")
	if got := RetryAfterDuration(resp, time.Second, 0); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("expected cap at 2s, got %v", got)
	}
	resp.Header.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	if got := RetryAfterDuration(resp, time.Second, 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected http-date capped at 5s, got %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("expected fallback for nil response, got %v", got)
	}
}

func TestJitterSleepStaysInBand(t *testing.T) {
	for i := 0; i < 50; i++ {
		got := JitterSleep(time.Second)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter out of band: %v", got)
		}
	}
	if JitterSleep(0) != 0 {
		t.Fatalf("expected zero for zero base")
	}
}
