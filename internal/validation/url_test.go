package validation

import (
	"strings"
	"testing"
)

func TestNewFeedURLValidator(t *testing.T) {
	v := NewFeedURLValidator()
	if v.AllowLocalhost || v.AllowPrivateIPs {
		t.Error("default validator should block local and private hosts")
	}
	if v.MaxLength != 2048 {
		t.Errorf("MaxLength = %d, want 2048", v.MaxLength)
	}

	p := NewPermissiveFeedURLValidator()
	if !p.AllowLocalhost || !p.AllowPrivateIPs {
		t.Error("permissive validator should allow local and private hosts")
	}
}

func TestValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "https kept", input: "https://blog.golang.org/feed.atom", want: "https://blog.golang.org/feed.atom"},
		{name: "scheme added", input: "  news.ycombinator.com/rss ", want: "https://news.ycombinator.com/rss"},
		{name: "host lowercased", input: "https://Blog.Golang.ORG/feed", want: "https://blog.golang.org/feed"},
		{name: "fragment dropped", input: "https://site.org/rss#top", want: "https://site.org/rss"},
		{name: "public ip", input: "http://8.8.8.8/feed", want: "http://8.8.8.8/feed"},
		{name: "empty", input: "   ", wantErr: "empty"},
		{name: "bad scheme", input: "ftp://site.org/feed", wantErr: "http or https"},
		{name: "html chars", input: "https://site.org/<script>", wantErr: "invalid characters"},
		{name: "localhost", input: "http://localhost:8080/feed", wantErr: "localhost"},
		{name: "loopback ip", input: "http://127.0.0.1/feed", wantErr: "localhost"},
		{name: "ipv6 loopback", input: "http://[::1]/feed", wantErr: "localhost"},
		{name: "private ip", input: "http://192.168.1.10/feed", wantErr: "private"},
		{name: "link local", input: "http://169.254.1.1/feed", wantErr: "private"},
		{name: "unspecified", input: "http://0.0.0.0/feed", wantErr: "unspecified"},
		{name: "traversal", input: "https://site.org/a/../b", wantErr: "traversal"},
		{name: "too long", input: "https://site.org/" + strings.Repeat("a", 2100), wantErr: "too long"},
	}

	v := NewFeedURLValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ValidateAndNormalize(%q) error = %v, want %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndNormalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateAndNormalizePermissive(t *testing.T) {
	v := NewPermissiveFeedURLValidator()
	for _, input := range []string{
		"http://localhost:8080/feed",
		"http://127.0.0.1:9000/rss",
		"http://10.0.0.5/feed.xml",
	} {
		if _, err := v.ValidateAndNormalize(input); err != nil {
			t.Errorf("permissive validator rejected %q: %v", input, err)
		}
	}
}
