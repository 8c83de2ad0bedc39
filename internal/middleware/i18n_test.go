package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(r *http.Request)
		fallback    string
		lookup      CountryLookup
		want        string
		wantCountry string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "FR")
				r.Header.Set("Accept-Language", "en-US")
			},
			want: "fr",
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: "en",
		},
		{
			name: "accept-language regional french",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "fr-CA,en;q=0.8")
			},
			want: "fr",
		},
		{
			name: "unsupported x-locale falls through",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "de")
				r.Header.Set("Accept-Language", "fr")
			},
			want: "fr",
		},
		{
			name: "country header picks french",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCountry", "be")
			},
			want:        "fr",
			wantCountry: "BE",
		},
		{
			name:        "geoip lookup non-french country",
			lookup:      func(string) (string, error) { return "us", nil },
			fallback:    "fr",
			want:        "en",
			wantCountry: "US",
		},
		{
			name:     "lookup error uses configured fallback",
			lookup:   func(string) (string, error) { return "", assertError("boom") },
			fallback: "fr",
			want:     "fr",
		},
		{
			name: "default to en",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got, country := detectLocale(req, tc.fallback, tc.lookup)
			if got != tc.want || country != tc.wantCountry {
				t.Fatalf("detectLocale() = %q/%q, want %q/%q", got, country, tc.want, tc.wantCountry)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "fr")
				r.Header.Set("CF-IPCountry", "us")
			},
			want: "FR",
		},
		{
			name: "resolver uses forwarded ip",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
			},
			resolver: func(ip string) (string, error) {
				if ip != "198.51.100.7" {
					return "", assertError("unexpected ip " + ip)
				}
				return "sn", nil
			},
			want: "SN",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					return "", assertError("unexpected ip " + ip)
				}
				return "ch", nil
			},
			want: "CH",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NMiddlewareSetsContext(t *testing.T) {
	var gotLocale, gotCountry string
	h := I18N("en", func(string) (string, error) { return "fr", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if gotLocale != "fr" || gotCountry != "FR" {
		t.Fatalf("context locale/country = %q/%q", gotLocale, gotCountry)
	}
	if rec.Header().Get("Content-Language") != "fr" {
		t.Fatalf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "fr")
	if got := LocaleFromContext(ctx); got != "fr" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "fr")
	}
}
