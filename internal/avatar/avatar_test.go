package avatar

import (
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	g := New("https://ui-avatars.com/api/")

	got := g.URL("Maria Silva")
	if !strings.HasPrefix(got, "https://ui-avatars.com/api/?") {
		t.Errorf("URL() = %q, want ui-avatars prefix", got)
	}
	if !strings.Contains(got, "name=Maria+Silva") {
		t.Errorf("URL() = %q, want encoded name", got)
	}

	// Same name, same URL.
	if g.URL("Maria Silva") != got {
		t.Error("URL() should be deterministic for the same name")
	}

	// Empty names still produce a usable URL.
	if !strings.Contains(g.URL(""), "name=") {
		t.Error("URL(\"\") should fall back to a placeholder name")
	}
}
