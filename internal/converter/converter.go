// Package converter rewrites legacy bracket-emphasis prompts into WebUI explicit-weight syntax
package converter

import (
	"fmt"
	"math"
	"strings"
)

const (
	upWeight   = 1.05
	downWeight = 0.95
	epsilon    = 1e-8
)

// token is a comma separated slice of the prompt with inclusive rune offsets
type token struct {
	text       string
	start, end int
}

// Convert converts legacy `{word}` / `[word]` emphasis into `(word:weight)` form.
// Each comma separated token gets the weight implied by the brackets enclosing it.
func Convert(text string) string {
	text = strings.ReplaceAll(text, "_", " ")
	runes := []rune(text)

	stripped := strings.TrimSpace(text)
	globalCurly := strings.HasPrefix(stripped, "{") && strings.HasSuffix(stripped, "}")
	globalSquare := strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]")

	var out []string
	for _, tok := range splitTokens(runes) {
		wordStart, wordEnd := wordBounds(tok)

		positive := max(countBefore(runes, wordStart, '{', '}'), countAfter(runes, wordEnd, '}', '{'))
		if globalCurly {
			positive = max(positive-1, 0)
		}
		negative := max(countBefore(runes, wordStart, '[', ']'), countAfter(runes, wordEnd, ']', '['))
		if globalSquare {
			negative = max(negative-1, 0)
		}

		cleaned := strings.TrimSpace(stripBrackets(tok.text))
		if cleaned == "" {
			continue
		}

		w := Weight(positive - negative)
		if math.Abs(w-1.0) < epsilon {
			out = append(out, cleaned)
		} else {
			out = append(out, fmt.Sprintf("(%s:%.2f)", cleaned, w))
		}
	}

	return strings.Join(out, ", ")
}

// Weight returns the multiplier for a net emphasis level rounded to two decimals
func Weight(level int) float64 {
	w := 1.0
	for i := 0; i < level; i++ {
		w *= upWeight
	}
	for i := 0; i > level; i-- {
		w *= downWeight
	}
	return math.Round((w+epsilon)*100) / 100
}

// splitTokens splits on every comma and drops whitespace-only tokens
func splitTokens(runes []rune) []token {
	var tokens []token
	start := 0
	for i, r := range runes {
		if r != ',' {
			continue
		}
		if s := string(runes[start:i]); strings.TrimSpace(s) != "" {
			tokens = append(tokens, token{text: s, start: start, end: i - 1})
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := string(runes[start:]); strings.TrimSpace(s) != "" {
			tokens = append(tokens, token{text: s, start: start, end: len(runes) - 1})
		}
	}
	return tokens
}

func isBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '{', '}', '[', ']':
		return true
	}
	return false
}

// wordBounds returns the absolute rune offsets of the token's text without surrounding
// spaces and brackets, or the whole token when nothing else remains
func wordBounds(tok token) (int, int) {
	runes := []rune(tok.text)
	left := 0
	for left < len(runes) && isBoundary(runes[left]) {
		left++
	}
	right := len(runes) - 1
	for right >= 0 && isBoundary(runes[right]) {
		right--
	}
	if left > right {
		return tok.start, tok.start + len(runes) - 1
	}
	return tok.start + left, tok.start + right
}

// countBefore counts target runes left of pos until stopper is seen
func countBefore(runes []rune, pos int, target, stopper rune) int {
	count := 0
	for i := pos - 1; i >= 0; i-- {
		if runes[i] == stopper {
			break
		}
		if runes[i] == target {
			count++
		}
	}
	return count
}

// countAfter counts target runes right of pos until stopper is seen
func countAfter(runes []rune, pos int, target, stopper rune) int {
	count := 0
	for i := pos + 1; i < len(runes); i++ {
		if runes[i] == stopper {
			break
		}
		if runes[i] == target {
			count++
		}
	}
	return count
}

func stripBrackets(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '[', ']':
			return -1
		}
		return r
	}, s)
}
