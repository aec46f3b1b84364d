package domain

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := Document{
		ID:       "doc-1",
		Filename: "fatura.pdf",
		Sections: []Section{{ID: "s1", Content: "text", Page: 1}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noID := Document{Filename: "fatura.pdf"}
	if err := noID.Validate(); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("missing ID: got %v, want ErrInvalidDocument", err)
	}

	badSection := Document{
		ID:       "doc-1",
		Sections: []Section{{Content: "text"}},
	}
	if err := badSection.Validate(); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("missing section ID: got %v, want ErrInvalidDocument", err)
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := []Document{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	b := []Document{{ID: "c"}, {ID: "a"}, {ID: "b"}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprints of reordered sets should match")
	}
	if got, want := Fingerprint(a), "a|b|c"; got != want {
		t.Errorf("Fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if got := Fingerprint(nil); got != "" {
		t.Errorf("Fingerprint(nil) = %q, want empty", got)
	}
}
