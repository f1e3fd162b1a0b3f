package spotify

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// searchTerm prepares user input for the search endpoint. Bracketed
// qualifiers such as "(UK)" are dropped unless nothing else remains.
func searchTerm(input string) string {
	trimmed := strings.TrimSpace(input)
	stripped := strings.Join(strings.Fields(stripBracketedSegments(trimmed)), " ")
	return fallbackIfEmpty(stripped, trimmed)
}

// normalizeArtistName case-folds, drops diacritics and strips punctuation
// but keeps every token, since words like "live" can be part of an
// artist's name.
func normalizeArtistName(name string) string {
	return strings.Join(strings.Fields(cleanSeparators(foldName(name))), " ")
}

// foldName maps "Björk" and "BJORK" to "bjork".
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, name)
	if err != nil {
		return strings.ToLower(name)
	}
	return folded
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}

func fallbackIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}
