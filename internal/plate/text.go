// Package plate maps raw OCR output onto Brazilian plate strings.
//
// Two formats are recognized: legacy AAA9999 and Mercosul AAA9A99. Text goes
// through three steps. ExtractPlate pulls a 7-character plate out of noisy
// text, Normalize fixes look-alike characters by position and adds the hyphen,
// and FinalValidate scores the result against the two patterns.
package plate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	mercosulPattern = regexp.MustCompile(`[A-Z]{3}[0-9][A-Z][0-9]{2}`)
	legacyPattern   = regexp.MustCompile(`[A-Z]{3}[0-9]{4}`)

	mercosulExact = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
	legacyExact   = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	letterPrefix  = regexp.MustCompile(`^[A-Z]{2,3}`)
)

// noiseTokens are frame texts printed around the characters, removed in this
// order.
var noiseTokens = []string{"BRASIL", "BR", "MERCOSUL", "MERCO", "SUL"}

// Length is the number of characters of a plate without its hyphen.
const Length = 7

// CleanOCR uppercases raw OCR output and removes all whitespace.
func CleanOCR(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// ExtractPlate returns the most plate-like 7-character substring of text.
//
// # Algorithm
//
//  1. Keep only A-Z and 0-9 (after uppercasing)
//  2. Remove the frame tokens BRASIL, BR, MERCOSUL, MERCO, SUL
//  3. Return the first Mercosul match, else the first legacy match
//  4. Else return the first 7-character window starting with three letters
//     and holding at least two digits
//  5. Else return the string itself when it has 7 characters, its last 7
//     characters when longer, or the short string unchanged
func ExtractPlate(text string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(text) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	clean := b.String()

	for _, tok := range noiseTokens {
		clean = strings.ReplaceAll(clean, tok, "")
	}

	if m := mercosulPattern.FindString(clean); m != "" {
		return m
	}
	if m := legacyPattern.FindString(clean); m != "" {
		return m
	}

	for i := 0; i+Length <= len(clean); i++ {
		chunk := clean[i : i+Length]
		letters, _ := countClasses(chunk[:3])
		_, digits := countClasses(chunk)
		if letters == 3 && digits >= 2 {
			return chunk
		}
	}

	if len(clean) > Length {
		return clean[len(clean)-Length:]
	}
	return clean
}

// digitToLetter maps digits that OCR confuses with letters.
var digitToLetter = map[byte]byte{'0': 'O', '6': 'G', '1': 'I', '5': 'S', '8': 'B', '2': 'Z'}

// letterToDigit is the inverse of digitToLetter.
var letterToDigit = map[byte]byte{'O': '0', 'I': '1', 'S': '5', 'G': '6', 'B': '8', 'Z': '2'}

// Normalize extracts a plate from text and, when it has exactly 7
// characters, corrects look-alike characters by position and formats it as
// "AAA-9A99" or "AAA-9999".
//
// Positions 0-2 must be letters, so stray digits become letters. Positions 3,
// 5 and 6 must be digits, so stray letters become digits. Position 4 is a
// letter on Mercosul plates and a digit on legacy ones and is never changed.
// Text that does not extract to 7 characters is returned as extracted.
func Normalize(text string) string {
	p := ExtractPlate(text)
	if len(p) != Length {
		return p
	}

	c := []byte(p)
	for i := 0; i < 3; i++ {
		if r, ok := digitToLetter[c[i]]; ok {
			c[i] = r
		}
	}
	for _, i := range []int{3, 5, 6} {
		if r, ok := letterToDigit[c[i]]; ok {
			c[i] = r
		}
	}
	return string(c[:3]) + "-" + string(c[3:])
}

// countClasses counts letters and digits in s.
func countClasses(s string) (letters, digits int) {
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return letters, digits
}

// TextScore rates how plate-like short OCR texts look. Only texts of at least
// four characters count; the best one wins:
//
//	+0.3 when the length is 4 to 9
//	+0.5 when it holds at least one letter and one digit
func TextScore(texts ...string) float64 {
	best := 0.0
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		if n < 4 {
			continue
		}
		score := 0.0
		if n <= 9 {
			score += 0.3
		}
		if letters, digits := countClasses(t); letters >= 1 && digits >= 1 {
			score += 0.5
		}
		best = max(best, score)
	}
	return min(best, 1.0)
}
