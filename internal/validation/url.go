package validation

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// FeedURLValidator checks feed URLs before they are fetched.
type FeedURLValidator struct {
	// AllowLocalhost permits localhost and loopback hosts.
	AllowLocalhost bool
	// AllowPrivateIPs permits private and link-local addresses.
	AllowPrivateIPs bool
	// MaxLength is the maximum allowed URL length.
	MaxLength int
}

// NewFeedURLValidator creates a validator with secure defaults.
func NewFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{MaxLength: 2048}
}

// NewPermissiveFeedURLValidator allows local addresses, for development and tests.
func NewPermissiveFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize validates a feed URL and returns the normalized form.
// A missing scheme defaults to https.
func (v *FeedURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.checkHost(host); err != nil {
		return "", err
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	return parsed.String(), nil
}

func (v *FeedURLValidator) checkHost(host string) error {
	host = strings.ToLower(host)

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		if !v.AllowLocalhost {
			return fmt.Errorf("localhost URLs are not permitted")
		}
		return nil
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		// Not an IP literal; a plain DNS name.
		if strings.Trim(host, ".") == "" {
			return fmt.Errorf("invalid hostname %q", host)
		}
		return nil
	}

	switch {
	case addr.IsUnspecified():
		return fmt.Errorf("unspecified address %s is not permitted", addr)
	case addr.IsLoopback():
		if !v.AllowLocalhost {
			return fmt.Errorf("localhost URLs are not permitted")
		}
	case addr.IsPrivate() || addr.IsLinkLocalUnicast():
		if !v.AllowPrivateIPs {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	return nil
}
