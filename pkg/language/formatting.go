package language

import (
	"html"
	"strings"
	"unicode"
)

var sentencePunctuation = map[rune]bool{
	'!': true,
	'?': true,
	'.': true,
	',': true,
	';': true,
	'。': true,
}

// Reformat cleans one raw engine hypothesis for user-visible output: it
// reverses the engine's HTML entity escaping, then restores the source
// segment's trailing punctuation and letter casing conventions. An empty
// hypothesis falls back to the source text.
func Reformat(source, raw string) string {
	translation := html.UnescapeString(raw)

	source = strings.TrimSpace(source)
	translation = strings.TrimSpace(translation)

	if source == "" {
		return ""
	}
	if translation == "" {
		return source
	}

	translation = matchTrailingPunctuation(source, translation)
	translation = collapseRepeatedSingleWord(source, translation)
	return matchCasing(source, translation)
}

// matchTrailingPunctuation makes the hypothesis end the way the source does:
// the source's final punctuation mark is carried over, and punctuation the
// engine invented on an unpunctuated source is dropped.
func matchTrailingPunctuation(source, translation string) string {
	srcLast := lastRune(source)
	trLast := lastRune(translation)

	if sentencePunctuation[srcLast] {
		if trLast == srcLast {
			return translation
		}
		if sentencePunctuation[trLast] {
			return trimLastRune(translation) + string(srcLast)
		}
		return translation + string(srcLast)
	}
	if sentencePunctuation[trLast] {
		return trimLastRune(translation)
	}
	return translation
}

// collapseRepeatedSingleWord handles engines that stutter on single-word
// input ("gracias gracias gracias"): when a one-word source produced several
// copies of the same word, keep one.
func collapseRepeatedSingleWord(source, translation string) string {
	if len(translation) <= len(source) {
		return translation
	}
	if len(strings.Fields(source)) != 1 {
		return translation
	}
	words := strings.Fields(translation)
	if len(words) < 2 {
		return translation
	}
	first := strings.ToLower(words[0])
	for _, w := range words[1:] {
		if strings.ToLower(w) != first {
			return translation
		}
	}
	return words[0]
}

func matchCasing(source, translation string) string {
	switch {
	case isLower(source):
		return strings.ToLower(translation)
	case isUpper(source):
		return strings.ToUpper(translation)
	case unicode.IsLower(firstRune(source)):
		return lowerFirst(translation)
	case unicode.IsUpper(firstRune(source)):
		return upperFirst(translation)
	}
	return translation
}

// isLower reports whether s contains at least one cased rune and no upper
// case ones, mirroring how "all lower case" reads to a human.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

func trimLastRune(s string) string {
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}

func lowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func upperFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
