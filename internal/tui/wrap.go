package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type wordRange struct {
	start int
	end   int
}

// findWords splits runes into space-separated words.
func findWords(runes []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range runes {
		if r == ' ' || r == '\n' || r == '\t' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(runes)})
	}
	return words
}

// Wrap breaks text into lines no wider than width terminal cells. Words are
// kept whole unless a single word is wider than the line; such words are
// split. Existing newlines start a new paragraph.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph([]rune(paragraph), width)...)
	}
	return lines
}

func wrapParagraph(runes []rune, width int) []string {
	words := findWords(runes)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, w := range words {
		word := string(runes[w.start:w.end])
		wordWidth := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+wordWidth <= width {
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + wordWidth
			continue
		}
		if lineWidth > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		for wordWidth > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			word = strings.TrimPrefix(word, head)
			wordWidth = runewidth.StringWidth(word)
		}
		line.WriteString(word)
		lineWidth = wordWidth
	}
	if lineWidth > 0 || len(lines) == 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Indent prefixes every line with pad.
func Indent(lines []string, pad string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pad)
		b.WriteString(line)
	}
	return b.String()
}
