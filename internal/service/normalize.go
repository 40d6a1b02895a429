package service

import "strings"

// Normalizer canonicalizes address text against a fixed location suffix:
// admins type the free portion, the suffix is appended on save, and stripping
// is applied repeatedly because historical data sometimes carries the suffix
// more than once. An empty suffix disables normalization entirely.
type Normalizer struct {
	suffix string
}

// NewNormalizer returns a normalizer for the given suffix.
func NewNormalizer(suffix string) *Normalizer {
	return &Normalizer{suffix: strings.TrimSpace(suffix)}
}

// Enabled reports whether a suffix is configured.
func (n *Normalizer) Enabled() bool {
	return n.suffix != ""
}

// Strip removes every trailing occurrence of the suffix, tolerating
// surrounding whitespace and a trailing comma before it.
func (n *Normalizer) Strip(text string) string {
	if n.suffix == "" {
		return text
	}
	for {
		trimmed := strings.TrimSpace(text)
		if !strings.HasSuffix(strings.ToLower(trimmed), strings.ToLower(n.suffix)) {
			return trimmed
		}
		trimmed = trimmed[:len(trimmed)-len(n.suffix)]
		trimmed = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), ","))
		text = trimmed
	}
}

// Canonical strips any existing suffixes and appends exactly one. Empty text
// stays empty.
func (n *Normalizer) Canonical(text string) string {
	if n.suffix == "" {
		return text
	}
	base := n.Strip(text)
	if base == "" {
		return ""
	}
	return base + " " + n.suffix
}
