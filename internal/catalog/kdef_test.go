package catalog

import (
	"errors"
	"testing"

	"emotion-quiz-service/internal/domain"
)

func TestBuiltinsValidate(t *testing.T) {
	for id, c := range Builtins() {
		if c.ID != id {
			t.Fatalf("catalog keyed %q has id %q", id, c.ID)
		}
		if err := c.Validate(); err != nil {
			t.Fatalf("catalog %s: %v", id, err)
		}
		if got := len(c.Quizzable()); got != 6 {
			t.Fatalf("catalog %s: expected 6 quizzable emotions, got %d", id, got)
		}
	}
}

func TestContrastsAreDirectional(t *testing.T) {
	c := Compound()
	haSu, ok := c.Contrast("HA", "SU")
	if !ok {
		t.Fatalf("expected HA->SU contrast")
	}
	suHa, ok := c.Contrast("SU", "HA")
	if !ok {
		t.Fatalf("expected SU->HA contrast")
	}
	if haSu[0] == suHa[0] {
		t.Fatalf("expected independently authored hints, got %q twice", haSu[0])
	}
	if _, ok := c.Contrast("NE", "SA"); ok {
		t.Fatalf("NE->SA is not authored and must fall back")
	}
}

func TestMirrorTable(t *testing.T) {
	c := Compound()
	if m, ok := c.Mirror("HL"); !ok || m != "HR" {
		t.Fatalf("expected HL mirror HR, got %q %v", m, ok)
	}
	if _, ok := c.Mirror("S"); ok {
		t.Fatalf("front angle must have no mirror")
	}
}

func TestParseSubject(t *testing.T) {
	c := Positional()
	phase, gender, id, err := c.ParseSubject("BM15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if phase != "B" || gender != "M" || id != "15" {
		t.Fatalf("unexpected axes %s %s %s", phase, gender, id)
	}
	for _, bad := range []string{"", "  ", "CF01", "AF36", "AX01", "AF3"} {
		if _, _, _, err := c.ParseSubject(bad); !errors.Is(err, domain.ErrInvalidSubject) {
			t.Fatalf("expected invalid subject for %q, got %v", bad, err)
		}
	}
}

func TestSubjectsInPhase(t *testing.T) {
	subjects := Positional().SubjectsInPhase("A")
	if len(subjects) != 70 {
		t.Fatalf("expected 70 subjects, got %d", len(subjects))
	}
	if subjects[0] != "AF01" || subjects[35] != "AM01" {
		t.Fatalf("unexpected ordering: %s %s", subjects[0], subjects[35])
	}
}

func TestValidateRejectsBrokenCatalog(t *testing.T) {
	c := Positional()
	c.Tiers = c.Tiers[:2]
	if err := c.Validate(); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected invalid catalog, got %v", err)
	}

	c = Compound()
	c.Tiers[1].PinnedPosition = domain.PositionRight
	if err := c.Validate(); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("pinning a side in a compound catalog must be rejected, got %v", err)
	}
}
