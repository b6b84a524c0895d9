package classify

import "unicode"

// decorative covers the code point blocks that carry no linguistic content:
// emoticons, pictographs, transport and map symbols, dingbats, variation
// selectors, supplemental symbols, regional indicators (flag pairs) and
// combining diacritical marks for symbols.
var decorative = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x20D0, Hi: 0x20FF, Stride: 1}, // combining marks for symbols
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // misc symbols
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // dingbats
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport and map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols
	},
}

// IsDecorative reports whether a single rune carries no translatable content.
func IsDecorative(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(decorative, r)
}

// IsTranslatable reports whether any segment contains at least one
// non-decorative character. Emoji-only or whitespace-only input returns false,
// which lets the caller skip the translation engine entirely.
func IsTranslatable(segments []string) bool {
	for _, segment := range segments {
		for _, r := range segment {
			if !IsDecorative(r) {
				return true
			}
		}
	}
	return false
}
