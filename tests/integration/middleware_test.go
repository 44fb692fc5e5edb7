//go:build integration

package integration

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
)

const testOrigin = "https://shop.drypanda.test"

func doRequest(t *testing.T, method, path string, body []byte, header map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestRequestID_OnRegister(t *testing.T) {
	body := []byte(`{"regType":"customer","username":"asha","email":"asha@drypanda.test","password":"pw","confirmPassword":"other","recaptchaToken":"token"}`)

	t.Run("generated on rejection", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/register", body, map[string]string{
			"Content-Type": "application/json",
		})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("rejected registration carries no X-Request-ID")
		}
	})

	t.Run("echoed", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/register", body, map[string]string{
			"Content-Type": "application/json",
			"X-Request-ID": "checkout-7f3a",
		})
		defer resp.Body.Close()

		if got := resp.Header.Get("X-Request-ID"); got != "checkout-7f3a" {
			t.Errorf("X-Request-ID: got %q, want %q", got, "checkout-7f3a")
		}
	})
}

func TestCORS_LoginPreflight(t *testing.T) {
	resp := doRequest(t, http.MethodOptions, "/api/login", nil, map[string]string{
		"Origin":                         testOrigin,
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Content-Type, Authorization",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("Access-Control-Allow-Methods %q does not allow POST", got)
	}
	allowed := resp.Header.Get("Access-Control-Allow-Headers")
	for _, h := range []string{"Content-Type", "Authorization"} {
		if !strings.Contains(allowed, h) {
			t.Errorf("Access-Control-Allow-Headers %q lacks %s", allowed, h)
		}
	}
}

func TestCORS_CatalogRead(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/products", nil, map[string]string{
		"Origin": testOrigin,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}

func TestRateLimit_HealthChecksExempt(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			resp := doGet(t, path)
			defer resp.Body.Close()

			if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "" {
				t.Errorf("%s carries X-RateLimit-Limit %q", path, limit)
			}
		})
	}

	t.Run("/api/products", func(t *testing.T) {
		resp := doGet(t, "/api/products")
		defer resp.Body.Close()

		if resp.Header.Get("X-RateLimit-Limit") == "" {
			t.Error("X-RateLimit-Limit header not present")
		}
		if resp.Header.Get("X-RateLimit-Remaining") == "" {
			t.Error("X-RateLimit-Remaining header not present")
		}
	})
}
