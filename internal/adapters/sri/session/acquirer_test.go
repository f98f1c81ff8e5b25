package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/yamgooo/sri-client-go/internal/core/result"
	httpx "github.com/yamgooo/sri-client-go/internal/infrastructure/http"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTracedClient(timeout time.Duration) *httpx.TracedClient {
	return httpx.NewTracedClient(&httpx.TracedClientConfig{Timeout: timeout}, discardLogger(), nil, "sri")
}

func TestAcquirer_Acquire(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generarCaptcha" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		nonce := r.URL.Query().Get("r")
		if n, err := strconv.Atoi(nonce); err != nil || n < 100000 || n > 999999 {
			t.Errorf("expected 6-digit cache-busting nonce, got %q", nonce)
		}
		if ua := r.Header.Get("User-Agent"); ua == "" || ua == "Go-http-client/1.1" {
			t.Errorf("expected fixed browser User-Agent, got %q", ua)
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123"})
		w.Write([]byte(`{&quot;values&quot;:[&quot;casa&quot;]}`))
	}))
	defer server.Close()

	acquirer := NewAcquirer(server.URL, newTestTracedClient(5*time.Second), discardLogger())

	res := acquirer.Acquire(context.Background())
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.Status, res.Message)
	}
	if res.Data.Captcha != `{"values":["casa"]}` {
		t.Errorf("expected decoded challenge payload, got %q", res.Data.Captcha)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/validarCaptcha/casa", nil)
	cookies := res.Data.Cookies(req.URL)
	if len(cookies) != 1 || cookies[0].Name != "JSESSIONID" {
		t.Errorf("expected session cookie collected in jar, got %v", cookies)
	}
}

func TestAcquirer_Acquire_FreshJarPerSession(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if c, err := r.Cookie("JSESSIONID"); err == nil {
			t.Errorf("expected no cookie carried across sessions, got %v", c)
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-" + strconv.Itoa(calls)})
		w.Write([]byte(`challenge`))
	}))
	defer server.Close()

	acquirer := NewAcquirer(server.URL, newTestTracedClient(5*time.Second), discardLogger())

	first := acquirer.Acquire(context.Background())
	second := acquirer.Acquire(context.Background())
	if !first.Success || !second.Success {
		t.Fatal("expected both acquisitions to succeed")
	}
	if first.Data.Jar == second.Data.Jar {
		t.Error("expected each session to own a fresh cookie jar")
	}
}

func TestAcquirer_Acquire_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	acquirer := NewAcquirer(server.URL, newTestTracedClient(5*time.Second), discardLogger())

	res := acquirer.Acquire(context.Background())
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Status != result.ServerError {
		t.Errorf("expected SERVER_ERROR, got %s", res.Status)
	}
	if res.Message != "captcha service returned status 502" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestAcquirer_Acquire_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	acquirer := NewAcquirer(server.URL, newTestTracedClient(50*time.Millisecond), discardLogger())

	res := acquirer.Acquire(context.Background())
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Status != result.ServerError {
		t.Errorf("expected SERVER_ERROR, got %s", res.Status)
	}
	if res.Message != "timeout while requesting captcha challenge" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestCacheBustingNonce_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		nonce, err := cacheBustingNonce()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n, err := strconv.Atoi(nonce)
		if err != nil {
			t.Fatalf("nonce %q is not numeric", nonce)
		}
		if n < 100000 || n > 999999 {
			t.Errorf("nonce %d outside the 6-digit range", n)
		}
	}
}
