package tui

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapKeepsWordsWhole(t *testing.T) {
	lines := Wrap("Glory be to Allah and praise be to Him", 12)
	want := []string{"Glory be to", "Allah and", "praise be to", "Him"}
	if len(lines) != len(want) {
		t.Fatalf("Wrap = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapSplitsLongWords(t *testing.T) {
	lines := Wrap("abcdefghij", 4)
	if len(lines) != 3 || lines[0] != "abcd" || lines[2] != "ij" {
		t.Fatalf("Wrap = %q", lines)
	}
}

func TestWrapMeasuresDisplayWidth(t *testing.T) {
	lines := Wrap("سُبْحَانَ اللَّهِ وَبِحَمْدِهِ", 10)
	for _, line := range lines {
		if runewidth.StringWidth(line) > 10 {
			t.Fatalf("line %q wider than 10 cells", line)
		}
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
}

func TestWrapKeepsParagraphs(t *testing.T) {
	lines := Wrap("one\n\ntwo", 20)
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("Wrap = %q", lines)
	}
}

func TestFindWords(t *testing.T) {
	words := findWords([]rune("  ab  cd "))
	if len(words) != 2 || words[0] != (wordRange{2, 4}) || words[1] != (wordRange{6, 8}) {
		t.Fatalf("findWords = %+v", words)
	}
}

func TestIndent(t *testing.T) {
	if got := Indent([]string{"a", "b"}, "  "); got != "  a\n  b" {
		t.Fatalf("Indent = %q", got)
	}
}
