package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze_HelloWorld(t *testing.T) {
	got := Analyze("Hello world.")

	assert.Equal(t, Result{
		WordCount:              2,
		CharacterCount:         12,
		CharacterCountNoSpaces: 11,
		SentenceCount:          1,
		ParagraphCount:         1,
		AverageWordLength:      5.5,
		LongestWord:            "world.",
		ReadingTimeMinutes:     0.0,
	}, got)
}

func TestAnalyze_EmptyText(t *testing.T) {
	got := Analyze("")

	assert.Equal(t, 0, got.WordCount)
	assert.Equal(t, 0, got.CharacterCount)
	assert.Equal(t, 0, got.CharacterCountNoSpaces)
	assert.Equal(t, 1, got.SentenceCount)
	assert.Equal(t, 0, got.ParagraphCount)
	assert.Equal(t, 0.0, got.AverageWordLength)
	assert.Equal(t, "", got.LongestWord)
	assert.Equal(t, 0.0, got.ReadingTimeMinutes)
}

func TestAnalyze_WordCountMatchesFields(t *testing.T) {
	inputs := []string{
		"one",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\nmixed",
		"multiple     spaces between",
		"unicode nbsp and em space",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, len(strings.Fields(in)), Analyze(in).WordCount)
		})
	}
}

func TestAnalyze_ASCIISeparatorsAreWhitespace(t *testing.T) {
	assert.Equal(t, 3, Analyze("a\x1cb c").WordCount)
	assert.Equal(t, 4, Analyze("w\x1dx\x1ey\x1fz").WordCount)
	assert.Equal(t, 2, Analyze("a. \n\n\x1c\n\nb").ParagraphCount)
	assert.True(t, IsBlank(" \t\x1c\u00a0\n"))
	assert.False(t, IsBlank(" x "))
}

func TestAnalyze_SentenceCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no terminators", "hello", 1},
		{"single", "Hi.", 1},
		{"run counts once", "Really?!", 1},
		{"ellipsis", "Wait... what?", 2},
		{"three sentences", "One. Two! Three?", 3},
		{"terminators only", "?!.", 1},
		{"separated runs", ". . .", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.text).SentenceCount)
		})
	}
}

func TestAnalyze_ParagraphCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"single line", "just one", 1},
		{"single newline", "line one\nline two", 1},
		{"two paragraphs", "first\n\nsecond", 2},
		{"blank blocks skipped", "first\n\n   \n\nsecond\n\n", 2},
		{"only blank", "\n\n\n\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.text).ParagraphCount)
		})
	}
}

func TestAnalyze_OnlySpaceCharacterStripped(t *testing.T) {
	got := Analyze("a b\tc\nd")

	assert.Equal(t, 7, got.CharacterCount)
	assert.Equal(t, 6, got.CharacterCountNoSpaces)
}

func TestAnalyze_CountsCharactersNotBytes(t *testing.T) {
	got := Analyze("héllo wörld")

	assert.Equal(t, 11, got.CharacterCount)
	assert.Equal(t, 10, got.CharacterCountNoSpaces)
	assert.Equal(t, "héllo", got.LongestWord)
}

func TestAnalyze_LongestWordFirstOnTie(t *testing.T) {
	assert.Equal(t, "abc", Analyze("abc def ghi").LongestWord)
	assert.Equal(t, "lengthy", Analyze("short longer tiny lengthy").LongestWord)
}

func TestAnalyze_ReadingTime(t *testing.T) {
	words := func(n int) string { return strings.TrimSpace(strings.Repeat("w ", n)) }

	assert.Equal(t, 1.0, Analyze(words(200)).ReadingTimeMinutes)
	assert.Equal(t, 0.1, Analyze(words(10)).ReadingTimeMinutes)
	// 30/200 = 0.15, which is stored just below .15
	assert.Equal(t, 0.1, Analyze(words(30)).ReadingTimeMinutes)
	assert.Equal(t, 2.5, Analyze(words(500)).ReadingTimeMinutes)
}

func TestAnalyze_AverageWordLengthRounded(t *testing.T) {
	// 7 chars without spaces over 3 words
	assert.Equal(t, 2.3, Analyze("ab cd efg").AverageWordLength)
}

func TestAnalyze_Idempotent(t *testing.T) {
	text := "Same input.\n\nSame output? Always!"
	assert.Equal(t, Analyze(text), Analyze(text))
}

func TestRoundOneDecimal(t *testing.T) {
	assert.Equal(t, 0.0, roundOneDecimal(0.01))
	assert.Equal(t, 0.2, roundOneDecimal(0.25))
	assert.Equal(t, 0.3, roundOneDecimal(0.35))
	assert.Equal(t, 5.5, roundOneDecimal(5.5))
	assert.Equal(t, 3.7, roundOneDecimal(3.66))
}

func TestPreview(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, Preview(short))

	exact := strings.Repeat("x", PreviewLength)
	assert.Equal(t, exact, Preview(exact))

	long := strings.Repeat("y", PreviewLength) + "tail"
	assert.Equal(t, strings.Repeat("y", PreviewLength)+PreviewMarker, Preview(long))

	multi := strings.Repeat("é", PreviewLength+1)
	assert.Equal(t, strings.Repeat("é", PreviewLength)+PreviewMarker, Preview(multi))
}
