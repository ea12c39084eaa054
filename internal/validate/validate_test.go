package validate

import (
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	if _, ok := Email("ana@modiesel.pe"); !ok {
		t.Fatal("valid address rejected")
	}
	if got, _ := Email("  ana@modiesel.pe  "); got != "ana@modiesel.pe" {
		t.Fatalf("trim: got %q", got)
	}
	for _, bad := range []string{"", "sin-arroba", "a@b", "a@b.", strings.Repeat("x", 55) + "@mo.pe"} {
		if _, ok := Email(bad); ok {
			t.Errorf("Email(%q) accepted", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	if !Password("ochocar8") {
		t.Fatal("8 chars rejected")
	}
	if Password("corta") {
		t.Fatal("short password accepted")
	}
	if Password(strings.Repeat("a", 65)) {
		t.Fatal("oversized password accepted")
	}
}

func TestQty(t *testing.T) {
	if Qty("3") != 3 {
		t.Fatal("Qty(3)")
	}
	for _, bad := range []string{"0", "-1", "", "abc", "1.5"} {
		if Qty(bad) != 0 {
			t.Errorf("Qty(%q) != 0", bad)
		}
	}
}

func TestIDAndIndex(t *testing.T) {
	if n, ok := ID("7"); !ok || n != 7 {
		t.Fatal("ID(7)")
	}
	if _, ok := ID("0"); ok {
		t.Fatal("ID(0) accepted")
	}
	if n, ok := Index("0"); !ok || n != 0 {
		t.Fatal("Index(0) must be valid")
	}
	if _, ok := Index("-1"); ok {
		t.Fatal("Index(-1) accepted")
	}
}
