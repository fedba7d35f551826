package config

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Chapter One", "Chapter One"},
		{"separator", "a/b", "ab"},
		{"dots", "..hidden.", "hidden"},
		{"spaces", "  title  ", "title"},
		{"control", "a\tb\x00c", "abc"},
		{"empty", " . ", "_untitled_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanFileName_Long(t *testing.T) {
	got := CleanFileName(strings.Repeat("é", 300))
	if len(got) > maxFileNameBytes {
		t.Errorf("Name length %d exceeds %d", len(got), maxFileNameBytes)
	}
	if !utf8.ValidString(got) {
		t.Error("Name was cut inside a rune")
	}
}
