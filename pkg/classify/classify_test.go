package classify

import "testing"

func TestIsTranslatable(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     bool
	}{
		{
			name:     "plain english",
			segments: []string{"Hello world"},
			want:     true,
		},
		{
			name:     "empty input",
			segments: nil,
			want:     false,
		},
		{
			name:     "empty segment",
			segments: []string{""},
			want:     false,
		},
		{
			name:     "whitespace only",
			segments: []string{"  \t \n "},
			want:     false,
		},
		{
			name:     "single emoji",
			segments: []string{"😀"},
			want:     false,
		},
		{
			name:     "emoji sequence with spaces",
			segments: []string{"😀 🚀 🎉"},
			want:     false,
		},
		{
			name:     "flag pair",
			segments: []string{"🇫🇷"},
			want:     false,
		},
		{
			name:     "dingbats and variation selector",
			segments: []string{"✈️"},
			want:     false,
		},
		{
			name:     "emoji followed by text",
			segments: []string{"😀 ok"},
			want:     true,
		},
		{
			name:     "one translatable segment among decorative ones",
			segments: []string{"🎉", "   ", "bonjour"},
			want:     true,
		},
		{
			name:     "non-latin script",
			segments: []string{"こんにちは"},
			want:     true,
		},
		{
			name:     "digits count as content",
			segments: []string{"42"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTranslatable(tt.segments); got != tt.want {
				t.Errorf("IsTranslatable(%q) = %v, want %v", tt.segments, got, tt.want)
			}
		})
	}
}

func TestIsDecorative(t *testing.T) {
	decoratives := []rune{' ', '\n', '😀', '🌍', '🚀', '☀', '✂', '🇩', '🤖', '⃐', '️'}
	for _, r := range decoratives {
		if !IsDecorative(r) {
			t.Errorf("IsDecorative(%q) = false, want true", r)
		}
	}

	content := []rune{'a', 'Z', '0', 'é', 'ß', '語', 'я', '?', '-'}
	for _, r := range content {
		if IsDecorative(r) {
			t.Errorf("IsDecorative(%q) = true, want false", r)
		}
	}
}
