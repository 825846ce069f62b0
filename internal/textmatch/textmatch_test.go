package textmatch

import (
	"strings"
	"testing"
)

// TestContainsAnyFirstAlternative verifies the header-alternatives case: the
// first matching candidate is named in the diagnostic.
func TestContainsAnyFirstAlternative(t *testing.T) {
	text := "header: Expires: Wed"
	found, diag := ContainsAny(text, []string{"header: Expires: ", "Expires header: "}, "")

	if !found {
		t.Fatalf("ContainsAny() = false, want true; diag: %s", diag)
	}
	if !strings.Contains(diag, `"header: Expires: "`) {
		t.Errorf("diagnostic does not name matching candidate: %s", diag)
	}
}

// TestContainsAnySecondAlternative verifies a later alternative also matches.
func TestContainsAnySecondAlternative(t *testing.T) {
	text := "Expires header: Wed"
	found, diag := ContainsAny(text, []string{"header: Expires: ", "Expires header: "}, "")

	if !found {
		t.Fatalf("ContainsAny() = false, want true; diag: %s", diag)
	}
	if !strings.Contains(diag, `"Expires header: "`) {
		t.Errorf("diagnostic does not name matching candidate: %s", diag)
	}
}

// TestContainsAnyNotFound verifies the miss diagnostic lists every candidate
// and the searched text.
func TestContainsAnyNotFound(t *testing.T) {
	found, diag := ContainsAny("nothing here", []string{"foo", "bar"}, "")

	if found {
		t.Fatal("ContainsAny() = true, want false")
	}
	for _, want := range []string{"foo", "bar", "nothing here"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostic missing %q: %s", want, diag)
		}
	}
}

// TestContainsAnyCaseSensitive verifies matching is exact, not case-folded.
func TestContainsAnyCaseSensitive(t *testing.T) {
	if found, _ := ContainsAny("Header: Date:", []string{"header: Date:"}, ""); found {
		t.Error("ContainsAny() matched across case, want case-sensitive")
	}
}

// TestContainsAnyNoRegex verifies candidates are literal substrings.
func TestContainsAnyNoRegex(t *testing.T) {
	if found, _ := ContainsAny("abc", []string{"a.c"}, ""); found {
		t.Error("ContainsAny() treated candidate as a pattern, want literal")
	}
	if found, _ := ContainsAny("a.c", []string{"a.c"}, ""); !found {
		t.Error("ContainsAny() failed to match literal dot")
	}
}

// TestContainsAnyEmptyCandidates verifies the degenerate caller-error case.
func TestContainsAnyEmptyCandidates(t *testing.T) {
	found, diag := ContainsAny("anything", nil, "")
	if found {
		t.Fatal("ContainsAny() with no candidates = true, want false")
	}
	if !strings.Contains(diag, "no candidate substrings") {
		t.Errorf("diagnostic does not flag empty candidate list: %s", diag)
	}
}

// TestContainsAnyCustomMessage verifies the optional label is prepended.
func TestContainsAnyCustomMessage(t *testing.T) {
	_, diag := ContainsAny("x", []string{"y"}, "Expires header")
	if !strings.HasPrefix(diag, "Expires header: ") {
		t.Errorf("diagnostic missing custom label: %s", diag)
	}
}

func TestContainsAll(t *testing.T) {
	text := "gsutil version: 4.68\nboto version: 2.49\nOS: Linux"

	found, _ := ContainsAll(text, []string{"gsutil version: ", "boto version: "}, "")
	if !found {
		t.Error("ContainsAll() = false, want true when all candidates present")
	}

	found, diag := ContainsAll(text, []string{"gsutil version: ", "python version: "}, "banner")
	if found {
		t.Fatal("ContainsAll() = true, want false when one candidate missing")
	}
	if !strings.Contains(diag, `"python version: "`) {
		t.Errorf("diagnostic does not name the missing candidate: %s", diag)
	}

	if found, _ := ContainsAll(text, nil, ""); found {
		t.Error("ContainsAll() with no candidates = true, want false")
	}
}

// TestContainsAnyBytes verifies byte input is normalized before comparison.
func TestContainsAnyBytes(t *testing.T) {
	found, _ := ContainsAnyBytes([]byte("reply: 'HTTP/1.1 200 OK"), []string{"HTTP/1.1 200"}, "")
	if !found {
		t.Error("ContainsAnyBytes() = false, want true")
	}
}

func TestNotContains(t *testing.T) {
	ok, _ := NotContains("total_bytes_transferred: 8", []string{"a1b2c3d4"}, "")
	if !ok {
		t.Error("NotContains() = false, want true")
	}

	ok, diag := NotContains("payload a1b2c3d4 leaked", []string{"a1b2c3d4"}, "media body")
	if ok {
		t.Error("NotContains() = true, want false")
	}
	for _, want := range []string{"a1b2c3d4", "media body"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostic missing %q: %s", want, diag)
		}
	}
}
