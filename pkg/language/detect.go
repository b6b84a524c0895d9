package language

import "unicode"

// scriptLanguages maps a writing system onto the language code it most likely
// belongs to. This is a coarse heuristic: scripts shared by many languages
// (Latin most of all) resolve to the dominant one and carry a low confidence.
var scriptLanguages = []struct {
	script *unicode.RangeTable
	code   string
}{
	{unicode.Han, "zh"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Cyrillic, "ru"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Greek, "el"},
	{unicode.Devanagari, "hi"},
	{unicode.Thai, "th"},
	{unicode.Latin, "en"},
}

// Detect guesses the source language of the given segments by writing
// system. It returns a language code and a confidence percentage equal to
// the share of letters attributed to the winning script. Input with no
// letters at all detects as English with zero confidence.
func Detect(segments []string) (string, float64) {
	counts := make(map[string]int)
	total := 0
	for _, segment := range segments {
		for _, r := range segment {
			if !unicode.IsLetter(r) {
				continue
			}
			total++
			for _, s := range scriptLanguages {
				if unicode.Is(s.script, r) {
					counts[s.code]++
					break
				}
			}
		}
	}
	if total == 0 {
		return "en", 0
	}

	best, bestCount := "en", 0
	for code, count := range counts {
		if count > bestCount {
			best, bestCount = code, count
		}
	}
	return best, 100 * float64(bestCount) / float64(total)
}
