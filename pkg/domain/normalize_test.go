package domain_test

import (
	"testing"

	"scanio/pkg/domain"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{
			name: "lowercase scheme and host; add root path",
			in:   "HTTP://Example.COM",
			out:  "http://example.com/",
			ok:   true,
		},
		{
			name: "bare host defaults to https",
			in:   "example.com",
			out:  "https://example.com/",
			ok:   true,
		},
		{
			name: "remove default http port",
			in:   "http://example.com:80/path",
			out:  "http://example.com/path",
			ok:   true,
		},
		{
			name: "remove default https port",
			in:   "https://example.com:443/",
			out:  "https://example.com/",
			ok:   true,
		},
		{
			name: "keep non-default port",
			in:   "http://example.com:8080/",
			out:  "http://example.com:8080/",
			ok:   true,
		},
		{
			name: "clean path and drop trailing slash",
			in:   "http://example.com//a/./b/../c/",
			out:  "http://example.com/a/c",
			ok:   true,
		},
		{
			name: "sort query keys and values",
			in:   "http://EXAMPLE.com/path?b=2&a=2&a=1",
			out:  "http://example.com/path?a=1&a=2&b=2",
			ok:   true,
		},
		{
			name: "remove fragment",
			in:   "https://example.com/path?x=1#Section-2",
			out:  "https://example.com/path?x=1",
			ok:   true,
		},
		{
			name: "ipv6 host with port (non-default kept)",
			in:   "http://[2001:db8::1]:8080/a",
			out:  "http://[2001:db8::1]:8080/a",
			ok:   true,
		},
		{
			name: "already normalized",
			in:   "https://example.com/foo?bar=1&baz=2",
			out:  "https://example.com/foo?bar=1&baz=2",
			ok:   true,
		},
		{
			name: "unsupported scheme rejected",
			in:   "ftp://example.com/file",
			out:  "",
			ok:   false,
		},
		{
			name: "empty input rejected",
			in:   "   ",
			out:  "",
			ok:   false,
		},
		{
			name: "invalid url returns error",
			in:   "http://exa mple.com",
			out:  "",
			ok:   false,
		},
	}

	for _, tc := range cases {
		got, err := domain.NormalizeURL(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.name, err)
			}
			if got != tc.out {
				t.Fatalf("%s: got %q want %q", tc.name, got, tc.out)
			}

			continue
		}
		if err == nil {
			t.Fatalf("%s: expected error, got %q", tc.name, got)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "duplicates collapse",
			in:   []string{"a", "b", "a"},
			out:  []string{"a", "b"},
		},
		{
			name: "trims and drops empties",
			in:   []string{" phishing ", "", "  ", "malware"},
			out:  []string{"malware", "phishing"},
		},
		{
			name: "sorted output",
			in:   []string{"zeta", "alpha"},
			out:  []string{"alpha", "zeta"},
		},
		{
			name: "nil stays nil",
			in:   nil,
			out:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.NormalizeTags(tc.in)
			if len(got) != len(tc.out) {
				t.Fatalf("got %v want %v", got, tc.out)
			}
			for i := range got {
				if got[i] != tc.out[i] {
					t.Fatalf("got %v want %v", got, tc.out)
				}
			}
		})
	}
}

func TestParseVisibility(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Visibility
		ok   bool
	}{
		{in: "public", want: domain.VisibilityPublic, ok: true},
		{in: "Unlisted", want: domain.VisibilityUnlisted, ok: true},
		{in: "PRIVATE", want: domain.VisibilityPrivate, ok: true},
		{in: "", want: domain.VisibilityPublic, ok: true},
		{in: "hidden", ok: false},
	}

	for _, tc := range cases {
		got, err := domain.ParseVisibility(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("%q: got %q want %q", tc.in, got, tc.want)
			}

			continue
		}
		if err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}
