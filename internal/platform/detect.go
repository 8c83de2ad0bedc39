// Package platform recognises the social-media sites a URL belongs to and
// the static quality tables offered for them.
package platform

import (
	"fmt"
	"net/url"
	"strings"

	"mediadl/internal/domain"
)

var hostSuffixes = []struct {
	platform domain.Platform
	hosts    []string
}{
	{domain.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{domain.PlatformTikTok, []string{"tiktok.com", "vm.tiktok.com"}},
	{domain.PlatformInstagram, []string{"instagram.com"}},
	{domain.PlatformFacebook, []string{"facebook.com", "fb.watch"}},
	{domain.PlatformTwitter, []string{"twitter.com", "x.com"}},
}

// SupportedNames lists the display names of every downloadable platform.
var SupportedNames = []string{"YouTube", "TikTok", "Instagram", "Facebook", "Twitter"}

// ParseURL accepts absolute http(s) URLs with a host.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: scheme %q", domain.ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}
	return u, nil
}

// Detect maps a parsed URL to its platform by hostname.
func Detect(u *url.URL) domain.Platform {
	if u == nil {
		return domain.PlatformUnknown
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	for _, entry := range hostSuffixes {
		for _, suffix := range entry.hosts {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return entry.platform
			}
		}
	}
	return domain.PlatformUnknown
}

// DetectString parses raw and detects its platform in one step.
func DetectString(raw string) (domain.Platform, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return domain.PlatformUnknown, err
	}
	return Detect(u), nil
}

// Downloadable reports whether a download may be started for p.
func Downloadable(p domain.Platform) bool {
	return p != domain.PlatformUnknown && p != ""
}

// Supported reports whether p is fully handled end to end.
func Supported(p domain.Platform) bool {
	return p == domain.PlatformYouTube
}

// LimitedFormats reports platforms whose format listing is unreliable, so
// only "best" is requested and probes fall back to a metadata fetch.
func LimitedFormats(p domain.Platform) bool {
	switch p {
	case domain.PlatformTikTok, domain.PlatformInstagram, domain.PlatformTwitter:
		return true
	}
	return false
}
