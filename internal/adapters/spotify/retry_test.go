package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientDoRequestWithRetry(t *testing.T) {
	tests := []struct {
		name             string
		statuses         []int
		maxRetries       int
		expectedStatus   int
		expectedAttempts int
		expectErr        bool
	}{
		{
			name:             "retries on 503 then succeeds",
			statuses:         []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK},
			maxRetries:       3,
			expectedStatus:   http.StatusOK,
			expectedAttempts: 3,
			expectErr:        false,
		},
		{
			name:             "exhausts retries on 429",
			statuses:         []int{http.StatusTooManyRequests},
			maxRetries:       2,
			expectedStatus:   0,
			expectedAttempts: 2,
			expectErr:        true,
		},
		{
			name:             "does not retry 404",
			statuses:         []int{http.StatusNotFound},
			maxRetries:       3,
			expectedStatus:   http.StatusNotFound,
			expectedAttempts: 1,
			expectErr:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				status := tt.statuses[len(tt.statuses)-1]
				if attempts <= len(tt.statuses) {
					status = tt.statuses[attempts-1]
				}
				w.WriteHeader(status)
			}))
			defer ts.Close()

			client := &Client{
				httpClient:  http.DefaultClient,
				baseURL:     ts.URL,
				maxRetries:  tt.maxRetries,
				baseBackoff: time.Millisecond,
			}

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			if err != nil {
				t.Fatalf("create request: %v", err)
			}

			resp, err := client.doRequestWithRetry(req)
			if (err != nil) != tt.expectErr {
				t.Fatalf("expected error: %v, got: %v", tt.expectErr, err)
			}
			if resp != nil {
				defer resp.Body.Close()
				if resp.StatusCode != tt.expectedStatus {
					t.Fatalf("status: got %d, want %d", resp.StatusCode, tt.expectedStatus)
				}
			}
			if attempts != tt.expectedAttempts {
				t.Fatalf("attempts: got %d, want %d", attempts, tt.expectedAttempts)
			}
		})
	}
}

func TestDoRequestWithRetryKeepsStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := &Client{httpClient: http.DefaultClient, baseURL: ts.URL, maxRetries: 1, baseBackoff: time.Millisecond}
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	_, err = client.doRequestWithRetry(req)
	var se *statusError
	if !errors.As(err, &se) {
		t.Fatalf("expected statusError, got %v", err)
	}
	if se.status != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", se.status, http.StatusBadGateway)
	}
}

func TestDoRequestWithRetryStopsOnCancel(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := &Client{httpClient: http.DefaultClient, baseURL: ts.URL, maxRetries: 3, baseBackoff: time.Millisecond}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	start := time.Now()
	if _, err := client.doRequestWithRetry(req); err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("retry ignored cancellation: took %s", elapsed)
	}
	if attempts != 1 {
		t.Fatalf("attempts: got %d, want 1", attempts)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "seconds", header: "2", want: 2 * time.Second},
		{name: "empty", header: "", want: 0},
		{name: "garbage", header: "soon", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			if got := parseRetryAfter(resp); got != tt.want {
				t.Fatalf("parseRetryAfter: got %s, want %s", got, tt.want)
			}
		})
	}
}
