package match

import "testing"

func TestMatchCaseInsensitive(t *testing.T) {
	m := New([]string{"Mario", "PS5"})

	term, ok := m.Match("new SUPER mario bros cartridge")
	if !ok {
		t.Fatal("expected a match")
	}
	// The reported term is the keyword as written in the keyword
	// list, so alert subjects stay deterministic.
	if term != "Mario" {
		t.Errorf("expected term %q, got %q", "Mario", term)
	}

	if _, ok := m.Match("nintendo switch only"); ok {
		t.Error("expected no match")
	}
}

func TestMatchReportsEarliestOccurrence(t *testing.T) {
	m := New([]string{"Mario", "PS5"})

	term, ok := m.Match("ps5 bundle with mario kart")
	if !ok {
		t.Fatal("expected a match")
	}
	if term != "PS5" {
		t.Errorf("expected earliest-position term %q, got %q", "PS5", term)
	}
}

func TestEmptyKeywordSafety(t *testing.T) {
	for _, keywords := range [][]string{nil, {}, {""}, {"", "  "}} {
		m := New(keywords)
		for _, text := range []string{"", "anything at all"} {
			if term, ok := m.Match(text); ok {
				t.Errorf("New(%q).Match(%q) matched %q; want no match ever", keywords, text, term)
			}
		}
	}
}

func TestKeywordsAreLiteral(t *testing.T) {
	m := New([]string{"c++", "what?"})

	if _, ok := m.Match("cc"); ok {
		t.Error("regex metacharacters in keywords must not act as patterns")
	}
	term, ok := m.Match("learn C++ today")
	if !ok || term != "c++" {
		t.Errorf("expected literal match on %q, got (%q, %v)", "c++", term, ok)
	}
}

func TestKeywordsTrimmed(t *testing.T) {
	m := New([]string{" mario ", "", "ps5"})

	got := m.Keywords()
	want := []string{"mario", "ps5"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %q; want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keywords()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}
