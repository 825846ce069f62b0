// Package textmatch provides substring presence checks with diagnostics.
//
// Debug output from the CLI under test renders the same semantic event with
// different wording across versions (for example "header: Expires: " versus
// "Expires header: "). Checks therefore accept a set of alternative
// substrings and pass when any one of them appears.
package textmatch

import (
	"fmt"
	"strings"
)

// ContainsAny reports whether at least one of candidates occurs in text.
// Matching is case-sensitive, exact-substring. The returned diagnostic names
// the matching candidate when found, or lists every candidate plus the
// searched text when not. An empty candidate list never matches; passing one
// is a caller error and the diagnostic says so.
//
// msg is an optional label prepended to the diagnostic; pass "" for none.
func ContainsAny(text string, candidates []string, msg string) (bool, string) {
	if len(candidates) == 0 {
		return false, prefix(msg) + "no candidate substrings given"
	}
	for _, c := range candidates {
		if strings.Contains(text, c) {
			return true, fmt.Sprintf("%sfound %q in %q", prefix(msg), c, text)
		}
	}
	return false, fmt.Sprintf("%snone of %q found in %q", prefix(msg), candidates, text)
}

// ContainsAll reports whether every candidate occurs in text. The diagnostic
// names the first missing candidate, or confirms all were present.
func ContainsAll(text string, candidates []string, msg string) (bool, string) {
	if len(candidates) == 0 {
		return false, prefix(msg) + "no candidate substrings given"
	}
	for _, c := range candidates {
		if !strings.Contains(text, c) {
			return false, fmt.Sprintf("%smissing %q in %q", prefix(msg), c, text)
		}
	}
	return true, fmt.Sprintf("%sall of %q found", prefix(msg), candidates)
}

// ContainsAnyBytes is ContainsAny for raw captured output. The bytes are
// normalized to a string before comparison.
func ContainsAnyBytes(text []byte, candidates []string, msg string) (bool, string) {
	return ContainsAny(string(text), candidates, msg)
}

// NotContains reports whether none of the forbidden substrings occur in text.
// Used for assertions like "upload media body must not be logged".
func NotContains(text string, forbidden []string, msg string) (bool, string) {
	for _, f := range forbidden {
		if strings.Contains(text, f) {
			return false, fmt.Sprintf("%sforbidden %q found in %q", prefix(msg), f, text)
		}
	}
	return true, prefix(msg) + "no forbidden substrings present"
}

func prefix(msg string) string {
	if msg == "" {
		return ""
	}
	return msg + ": "
}
