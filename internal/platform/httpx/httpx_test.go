package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &StatusError{Provider: "x", StatusCode: 429}, true},
		{"server error", &StatusError{Provider: "x", StatusCode: 503}, true},
		{"bad request", &StatusError{Provider: "x", StatusCode: 400}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRetryAfterDurationCapsHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"60"}}}
	if got := RetryAfterDuration(resp, time.Second, 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected cap, got %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func(ctx context.Context) (*http.Response, error) {
		calls++
		return nil, &StatusError{Provider: "x", StatusCode: 401}
	}, nil)
	if err == nil || calls != 1 {
		t.Fatalf("expected single failing call, got calls=%d err=%v", calls, err)
	}
}

func TestRetryRetriesRetryable(t *testing.T) {
	calls := 0
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"1"}}}
	err := Retry(context.Background(), 2, func(ctx context.Context) (*http.Response, error) {
		calls++
		if calls < 2 {
			return resp, &StatusError{Provider: "x", StatusCode: 502}
		}
		return nil, nil
	}, func(int, time.Duration, error) {})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on second call, got calls=%d err=%v", calls, err)
	}
}
