package pointers

import "testing"

func TestPtrCopies(t *testing.T) {
	v := true
	p := Ptr(v)
	v = false
	if !*p {
		t.Fatalf("expected pointer to hold a copy")
	}
}

func TestNonEmpty(t *testing.T) {
	if NonEmpty("") != nil {
		t.Fatalf("expected nil for empty string")
	}
	if got := NonEmpty("SKU"); got == nil || *got != "SKU" {
		t.Fatalf("unexpected %v", got)
	}
}
