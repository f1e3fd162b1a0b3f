package spotify

import "testing"

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips bracketed qualifier",
			input: "Burial (UK)",
			want:  "Burial",
		},
		{
			name:  "collapses whitespace",
			input: "  Chase   &  Status ",
			want:  "Chase & Status",
		},
		{
			name:  "keeps input when only brackets",
			input: "(hed) p.e.",
			want:  "p.e.",
		},
		{
			name:  "falls back to raw input",
			input: "[unknown]",
			want:  "[unknown]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchTerm(tt.input)
			if got != tt.want {
				t.Fatalf("searchTerm: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeArtistName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips punctuation",
			input: "Chase & Status",
			want:  "chase status",
		},
		{
			name:  "keeps noise words",
			input: "Live",
			want:  "live",
		},
		{
			name:  "keeps digits",
			input: "Sub Focus 2",
			want:  "sub focus 2",
		},
		{
			name:  "drops diacritics",
			input: "Björk",
			want:  "bjork",
		},
		{
			name:  "folds case",
			input: "RÖYKSOPP",
			want:  "royksopp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeArtistName(tt.input)
			if got != tt.want {
				t.Fatalf("normalizeArtistName: got %q, want %q", got, tt.want)
			}
		})
	}
}
