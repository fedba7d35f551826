package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"root", 0, "Pages: %d", []any{3}, "Pages: 3\n"},
		{"nested", 2, "Line[%d] height[%g]", []any{0, 18.5}, "    Line[0] height[18.5]\n"},
		{"negative depth", -1, "x", nil, "x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "Text", "syl")
	tw.TextBlock(1, "Text", " \n")
	tw.TextBlock(1, "href", "")
	want := "  Text: \"syl\"\n  Text: \" \\n\"\n  href: \n"
	if got := tw.String(); got != want {
		t.Errorf("TextBlock() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Flags(t *testing.T) {
	tw := NewTreeWriter()
	tw.Flags(1, "style", "bold", true, "italic", false, "code", true)
	tw.Flags(1, "empty", "bold", false)
	tw.Flags(1, "odd", "dangling")
	if got, want := tw.String(), "  style: [bold code]\n"; got != want {
		t.Errorf("Flags() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Dump(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "Page[%d] left[%d]", 1, 0)
	tw.Line(1, "Line[%d]", 0)
	tw.TextBlock(2, "Text", "Hello")
	tw.Flags(3, "char", "bold", true)
	want := "Page[1] left[0]\n  Line[0]\n    Text: \"Hello\"\n      char: [bold]\n"
	if got := tw.String(); got != want {
		t.Errorf("dump = %q, want %q", got, want)
	}
}
