package intake

import "strings"

// MediaPolicy decides whether an issue description demands photo or video
// evidence before the media step may be skipped. Matching is a
// case-insensitive substring check against the configured keywords.
type MediaPolicy struct {
	Enabled  bool
	Keywords []string
}

// RequiresMedia reports whether the issue text triggers the evidence
// requirement.
func (p MediaPolicy) RequiresMedia(issue string) bool {
	if !p.Enabled {
		return false
	}
	lowered := strings.ToLower(issue)
	for _, kw := range p.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
