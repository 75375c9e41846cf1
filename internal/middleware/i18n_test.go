package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeProbe(t *testing.T, lookup CountryLookup, configure func(*http.Request)) string {
	t.Helper()
	var got string
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	if configure != nil {
		configure(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestI18NHeaderWins(t *testing.T) {
	got := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "id-ID")
		r.Header.Set("Accept-Language", "en-US")
	})
	if got != "id" {
		t.Fatalf("locale = %q, want id", got)
	}
}

func TestI18NAcceptLanguage(t *testing.T) {
	got := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "id, en;q=0.8")
	})
	if got != "id" {
		t.Fatalf("locale = %q, want id", got)
	}
}

func TestI18NGeoIPFallback(t *testing.T) {
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.10" {
			t.Errorf("unexpected ip %q", ip)
		}
		return "ID", nil
	}
	if got := localeProbe(t, lookup, nil); got != "id" {
		t.Fatalf("locale = %q, want id", got)
	}
}

func TestI18NDefault(t *testing.T) {
	if got := localeProbe(t, nil, nil); got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}
}

func TestI18NUnsupportedLocaleFallsBack(t *testing.T) {
	got := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "fr-FR")
	})
	if got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}
}
