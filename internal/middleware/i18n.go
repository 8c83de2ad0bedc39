package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"mediadl/internal/i18n"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// frenchCountries are the countries whose visitors get French when the
// request carries no usable language header.
var frenchCountries = map[string]struct{}{
	"FR": {}, "BE": {}, "CH": {}, "LU": {}, "MC": {},
	"SN": {}, "CI": {}, "CM": {}, "ML": {}, "BF": {},
	"NE": {}, "TG": {}, "BJ": {}, "GA": {}, "CD": {},
	"CG": {}, "MG": {}, "HT": {},
}

// I18N stores the negotiated locale (and the client country, when known) on
// the request context.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := i18n.Normalize(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale, country := detectLocale(r, fallback, lookup)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// detectLocale tries X-Locale, then Accept-Language, then the GeoIP country,
// then the configured default. The country lookup only runs when both
// headers fail to match.
func detectLocale(r *http.Request, fallback string, lookup CountryLookup) (string, string) {
	if v := i18n.Match(r.Header.Get("X-Locale")); v != "" {
		return v, ""
	}
	if v := i18n.Match(r.Header.Get("Accept-Language")); v != "" {
		return v, ""
	}
	country := ResolveCountry(r, lookup)
	if country != "" {
		if _, ok := frenchCountries[country]; ok {
			return i18n.French.String(), country
		}
		return i18n.English.String(), country
	}
	if fallback != "" {
		return fallback, ""
	}
	return i18n.English.String(), ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the negotiated locale, English when unset.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return i18n.English.String()
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given request.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}
