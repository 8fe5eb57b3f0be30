package role

import "testing"

func TestParse_KeysAndLabels(t *testing.T) {
	for _, r := range All {
		if got, ok := Parse(string(r)); !ok || got != r {
			t.Fatalf("Parse(%q) = %q, %v", r, got, ok)
		}
		if got, ok := Parse(" " + r.Label() + " "); !ok || got != r {
			t.Fatalf("Parse(label %q) = %q, %v", r.Label(), got, ok)
		}
	}
	if got, ok := Parse("ЗАГОЛОВОК_АНГЛИЙСКИЙ"); !ok || got != TitleEN {
		t.Fatalf("case-insensitive label: %q %v", got, ok)
	}
	for _, bad := range []string{"", "summary", "удостоверяющая_информация"} {
		if _, ok := Parse(bad); ok {
			t.Fatalf("Parse(%q) should fail", bad)
		}
	}
}

func TestMetadata(t *testing.T) {
	singletons := 0
	for _, r := range All {
		if !r.Valid() || r.Label() == "" || r.Display() == "" {
			t.Fatalf("incomplete metadata for %q", r)
		}
		if r.Singleton() {
			singletons++
		}
	}
	if singletons != 8 {
		t.Fatalf("singletons=%d, want 8", singletons)
	}
	if UDC.Singleton() || BodyText.Singleton() || AuthorInfoRU.Singleton() || WorkplaceEN.Singleton() {
		t.Fatalf("repeatable roles marked singleton")
	}
	if !WorkplaceEN.English() || AuthorRU.English() {
		t.Fatalf("language flags")
	}
	if Role("x").Valid() || Role("x").Display() != "x" {
		t.Fatalf("unknown role handling")
	}
	if len(Required) != 10 {
		t.Fatalf("required=%d", len(Required))
	}
}

func TestSibling(t *testing.T) {
	for _, r := range All {
		s, ok := r.Sibling()
		if !ok {
			continue
		}
		if back, _ := s.Sibling(); back != r || s.English() == r.English() {
			t.Fatalf("sibling of %q is %q", r, s)
		}
	}
	if _, ok := BodyText.Sibling(); ok {
		t.Fatalf("body text has no sibling")
	}
}
