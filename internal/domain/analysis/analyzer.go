package analysis

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordsPerMinute is the reading speed used for ReadingTimeMinutes.
const wordsPerMinute = 200

const paragraphSeparator = "\n\n"

// Analyze computes the statistics for text. It is total over any string and
// keeps no state between calls.
func Analyze(text string) Result {
	words := strings.FieldsFunc(text, isSpace)
	wordCount := len(words)

	charCount := utf8.RuneCountInString(text)
	// only the ASCII space is stripped; tabs and newlines still count
	charCountNoSpaces := charCount - strings.Count(text, " ")

	var avg float64
	if wordCount > 0 {
		avg = roundOneDecimal(float64(charCountNoSpaces) / float64(wordCount))
	}

	return Result{
		WordCount:              wordCount,
		CharacterCount:         charCount,
		CharacterCountNoSpaces: charCountNoSpaces,
		SentenceCount:          countSentences(text),
		ParagraphCount:         countParagraphs(text),
		AverageWordLength:      avg,
		LongestWord:            longestWord(words),
		ReadingTimeMinutes:     roundOneDecimal(float64(wordCount) / wordsPerMinute),
	}
}

// isSpace is unicode.IsSpace plus the ASCII file, group, record and unit
// separators (U+001C to U+001F), which Python's str.split also breaks on.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// IsBlank reports whether text holds nothing but whitespace.
func IsBlank(text string) bool {
	return strings.TrimFunc(text, isSpace) == ""
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// countSentences counts maximal runs of terminators, so "?!" or "..." count once.
func countSentences(text string) int {
	runs := 0
	inRun := false
	for _, r := range text {
		if isTerminator(r) {
			if !inRun {
				runs++
				inRun = true
			}
			continue
		}
		inRun = false
	}
	if runs == 0 {
		return 1
	}
	return runs
}

func countParagraphs(text string) int {
	n := 0
	for _, p := range strings.Split(text, paragraphSeparator) {
		if !IsBlank(p) {
			n++
		}
	}
	return n
}

// longestWord keeps the first word on ties.
func longestWord(words []string) string {
	best, bestLen := "", -1
	for _, w := range words {
		if l := utf8.RuneCountInString(w); l > bestLen {
			best, bestLen = w, l
		}
	}
	return best
}

// roundOneDecimal rounds the exact binary value to one decimal place, ties to even.
// math.Round(x*10)/10 would turn 0.15 into 0.2 because 0.15*10 rounds up to 1.5.
func roundOneDecimal(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}

// Preview returns the first PreviewLength characters of text, marked when cut.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength]) + PreviewMarker
}
