package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		accept   string
		fallback string
		country  string
		want     string
	}{
		{name: "x-locale beats country", locale: "id-ID", country: "US", want: "id"},
		{name: "unsupported x-locale is en", locale: "fr", country: "ID", want: "en"},
		{name: "accept-language en", accept: "en-US,en;q=0.9", want: "en"},
		{name: "accept-language id", accept: "id-ID,en;q=0.8", want: "id"},
		{name: "matcher skips unsupported first choice", accept: "fr;q=1, id-ID;q=0.8", want: "id"},
		{name: "matcher follows weights", accept: "en;q=0.3, id;q=0.9", want: "id"},
		{name: "unsupported language uses country", accept: "fr", country: "ID", want: "id"},
		{name: "unsupported language uses fallback", accept: "fr-FR", want: "en"},
		{name: "malformed header uses fallback", accept: "en;q=nope", fallback: "id", want: "id"},
		{name: "country id", country: "ID", want: "id"},
		{name: "other country is en", country: "MY", fallback: "id", want: "en"},
		{name: "configured fallback", fallback: "id", want: "id"},
		{name: "default en", want: "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/prompts", nil)
			if tc.locale != "" {
				req.Header.Set("X-Locale", tc.locale)
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			if got := detectLocale(req, tc.fallback, tc.country); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleRegion(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "pt-BR,pt;q=0.9", want: "BR"},
		{header: "en-GB", want: "GB"},
		{header: "id", want: ""},
		{header: "en", want: ""},
		{header: "fr;q=1, id-ID;q=0.8", want: ""},
		{header: "en;q=nope", want: ""},
		{header: "   ", want: ""},
	}
	for _, tc := range tests {
		if got := localeRegion(tc.header); got != tc.want {
			t.Fatalf("localeRegion(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestResolveCountry(t *testing.T) {
	lookupMY := func(ip string) (string, error) { return "my", nil }
	tests := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{name: "edge header first", headers: map[string]string{"CF-IPCountry": "id", "Accept-Language": "en-GB"}, want: "ID"},
		{name: "explicit locale region", headers: map[string]string{"X-Locale": "en-AU"}, want: "AU"},
		{name: "explicit accept-language region", headers: map[string]string{"Accept-Language": "pt-BR,pt;q=0.9"}, lookup: lookupMY, want: "BR"},
		{name: "inferred region defers to lookup", headers: map[string]string{"Accept-Language": "en"}, lookup: lookupMY, want: "MY"},
		{name: "indonesian language implies ID", headers: map[string]string{"Accept-Language": "id;q=0.8"}, lookup: lookupMY, want: "ID"},
		{name: "lookup error", lookup: func(ip string) (string, error) { return "", errors.New("no record") }, want: ""},
		{name: "nothing known", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/prompts", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ResolveCountry(req, tc.lookup); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountryLooksUpConnectionAddress(t *testing.T) {
	var looked string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.4:80"
	req.Header.Set("X-Forwarded-For", "198.51.100.77")
	ResolveCountry(req, func(ip string) (string, error) {
		looked = ip
		return "sg", nil
	})
	if looked != "203.0.113.4" {
		t.Fatalf("lookup ip = %q, want connection address", looked)
	}
}

func TestI18NStoresLocaleAndCountry(t *testing.T) {
	var locale, country string
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req.Header.Set("Accept-Language", "fr;q=1, id-ID;q=0.8")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if locale != "id" || country != "ID" {
		t.Fatalf("locale=%q country=%q", locale, country)
	}
}

func TestLocaleFromContextDefault(t *testing.T) {
	if got := LocaleFromContext(context.Background()); got != "en" {
		t.Fatalf("LocaleFromContext() = %q, want en", got)
	}
}
