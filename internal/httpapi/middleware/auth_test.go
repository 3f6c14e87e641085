package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAdmin_NoKeysConfiguredAllowsAll(t *testing.T) {
	h := RequireAdmin(Keys{})(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/api/alarms", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rec.Code)
	}
}

func TestRequireAdmin_RejectsMissingAndPublicKeys(t *testing.T) {
	keys := Keys{Public: []string{"pub"}, Admin: []string{"adm"}}
	h := RequireAdmin(keys)(okHandler())

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"no key", "", "", http.StatusForbidden},
		{"public key", "X-API-Key", "pub", http.StatusForbidden},
		{"admin key", "X-API-Key", "adm", http.StatusOK},
		{"bearer admin", "Authorization", "Bearer adm", http.StatusOK},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/alarms", nil)
		if c.header != "" {
			req.Header.Set(c.header, c.value)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Fatalf("%s: status=%d want %d", c.name, rec.Code, c.want)
		}
	}
}

func TestRequireAny_AcceptsEitherKey(t *testing.T) {
	keys := Keys{Public: []string{"pub"}, Admin: []string{"adm"}}
	h := RequireAny(keys)(okHandler())

	for _, key := range []string{"pub", "adm"} {
		req := httptest.NewRequest(http.MethodGet, "/api/alarms", nil)
		req.Header.Set("X-API-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("key %q: status=%d want 200", key, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/alarms", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: status=%d want 401", rec.Code)
	}
}
