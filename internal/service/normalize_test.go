package service

import "testing"

func TestNormalizer_Strip(t *testing.T) {
	n := NewNormalizer("ardlethan nsw 2665")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no suffix present", in: "12 Main St", want: "12 Main St"},
		{name: "single suffix", in: "12 Main St ardlethan nsw 2665", want: "12 Main St"},
		{name: "duplicated suffix", in: "12 Main St ardlethan nsw 2665 ardlethan nsw 2665", want: "12 Main St"},
		{name: "comma before suffix", in: "12 Main St, ardlethan nsw 2665", want: "12 Main St"},
		{name: "case insensitive", in: "12 Main St Ardlethan NSW 2665", want: "12 Main St"},
		{name: "suffix only", in: "ardlethan nsw 2665", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Strip(tt.in); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Canonical(t *testing.T) {
	n := NewNormalizer("ardlethan nsw 2665")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "appends once", in: "12 Main St", want: "12 Main St ardlethan nsw 2665"},
		{name: "idempotent", in: "12 Main St ardlethan nsw 2665", want: "12 Main St ardlethan nsw 2665"},
		{name: "collapses duplicates", in: "12 Main St ardlethan nsw 2665 ardlethan nsw 2665", want: "12 Main St ardlethan nsw 2665"},
		{name: "empty stays empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Canonical(tt.in); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Disabled(t *testing.T) {
	n := NewNormalizer("")
	if n.Enabled() {
		t.Error("empty suffix should disable normalization")
	}
	if got := n.Canonical("12 Main St"); got != "12 Main St" {
		t.Errorf("disabled normalizer changed text: %q", got)
	}
	if got := n.Strip("12 Main St"); got != "12 Main St" {
		t.Errorf("disabled normalizer stripped text: %q", got)
	}
}
