package invoke

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPInvokeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/stability.stable-diffusion-xl-v1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("key header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("body = %s", body)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	h := &HTTP{Client: srv.Client(), Endpoint: srv.URL + "/", Key: "secret", KeyHeader: "X-Api-Key"}
	out, err := h.Invoke(context.Background(), "stability.stable-diffusion-xl-v1", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if string(out) != `{"ok":true}` {
		t.Errorf("out = %s", out)
	}
}

func TestHTTPInvokeBearerDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	h := &HTTP{Client: srv.Client(), Endpoint: srv.URL, Key: "tok"}
	if _, err := h.Invoke(context.Background(), "m", []byte(`{}`)); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}

func TestHTTPInvokeErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		message   string
		transient bool
	}{
		{"throttled", http.StatusTooManyRequests, `{"message":"slow down"}`, "slow down", true},
		{"unavailable", http.StatusServiceUnavailable, `busy`, "busy", true},
		{"forbidden", http.StatusForbidden, `{"message":"bad key"}`, "bad key", false},
		{"validation", http.StatusBadRequest, `{"message":"height must be a multiple of 64"}`, "height must be a multiple of 64", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			h := &HTTP{Client: srv.Client(), Endpoint: srv.URL}
			_, err := h.Invoke(context.Background(), "m", []byte(`{}`))

			var ie *Error
			if !errors.As(err, &ie) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if ie.Message != tt.message {
				t.Errorf("message = %q, want %q", ie.Message, tt.message)
			}
			if IsTransient(err) != tt.transient {
				t.Errorf("transient = %v, want %v", IsTransient(err), tt.transient)
			}
		})
	}
}
