package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParseHostNoPort(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"10.0.0.1":         "10.0.0.1",
		"10.0.0.1:8080":    "10.0.0.1",
		"[::1]:443":        "::1",
		"[::1]":            "::1",
		"catalog.local:80": "catalog.local",
		" catalog.local ":  "catalog.local",
	}
	for in, want := range tests {
		if got := ParseHostNoPort(in); got != want {
			t.Errorf("ParseHostNoPort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "headers ignored without trust", remote: "192.0.2.1:1234", xff: "203.0.113.9", want: "192.0.2.1"},
		{name: "left-most forwarded", remote: "127.0.0.1:1", xff: "203.0.113.9, 10.0.0.1", trustProxy: true, want: "203.0.113.9"},
		{name: "real ip fallback", remote: "127.0.0.1:1", realIP: "198.51.100.7", trustProxy: true, want: "198.51.100.7"},
		{name: "no headers", remote: "127.0.0.1:1", trustProxy: true, want: "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.0.2.5", "2001:db8::/32", "not-an-ip", ""})
	if m.IsEmpty() {
		t.Fatal("IsEmpty() = true")
	}

	tests := map[string]bool{
		"10.1.2.3":        true,
		"192.0.2.5":       true,
		"192.0.2.6":       false,
		"::ffff:10.9.9.9": true,
		"2001:db8::1":     true,
		"2001:db9::1":     false,
		"garbage":         false,
		"":                false,
	}
	for ip, want := range tests {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("empty list should produce an empty matcher")
	}
}
