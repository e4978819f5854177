package resolver

import (
	"errors"
	"strings"
	"testing"
)

func TestCleanID(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"T-fix-login", "fix-login"},
		{"P-website", "website"},
		{"E-auth", "auth"},
		{"F-search", "search"},
		{"X-anything", "anything"}, // any single letter + hyphen strips
		{"a-bc", "bc"},             // lowercase prefixes strip too
		{"fix-login", "fix-login"}, // multi-char prefixes do not strip
		{"ab-cd", "ab-cd"},
		{"  T-padded  ", "padded"},
		{"t", "t"},
		{"", ""},
		{"-x", "-x"}, // hyphen is not a letter
	}
	for _, tc := range cases {
		if got := CleanID(tc.input); got != tc.want {
			t.Errorf("CleanID(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestValidateIDAccepts(t *testing.T) {
	for _, id := range []string{
		"fix-login",
		"task_42",
		"UPPER-ok",
		"a",
		"v1.2.3",
		strings.Repeat("a", 255),
	} {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q): %v", id, err)
		}
	}
}

func TestValidateIDRejects(t *testing.T) {
	cases := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"traversal", "../etc/passwd"},
		{"embedded traversal", "a..b"},
		{"absolute", "/etc/passwd"},
		{"backslash root", `\windows`},
		{"home", "~me"},
		{"separator", "a/b"},
		{"drive colon", "c:evil"},
		{"null byte", "a\x00b"},
		{"control char", "a\x1bb"},
		{"delete char", "a\x7fb"},
		{"reserved con", "con"},
		{"reserved upper", "CON"},
		{"reserved com port", "com4"},
		{"too long", strings.Repeat("a", 256)},
		{"space", "a b"},
		{"glob star", "a*"},
		{"leading dot", ".hidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateID(tc.id)
			if err == nil {
				t.Fatalf("ValidateID(%q): expected error", tc.id)
			}
			var se *SecurityError
			if !errors.As(err, &se) {
				t.Errorf("expected *SecurityError, got %T", err)
			}
		})
	}
}
