package firestore

import (
	"testing"

	"finanzas/internal/core"
)

func TestEncodeSkipsIDAndEmptyStrings(t *testing.T) {
	fields, err := encode(core.Category{ID: "c1", Name: "Ocio", Type: core.CategoryBoth})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, ok := fields["id"]; ok {
		t.Error("id must not be encoded")
	}
	if _, ok := fields["icon"]; ok {
		t.Error("empty icon must be omitted")
	}
	if got := str(fields["name"]); got != "Ocio" {
		t.Errorf("name = %q", got)
	}
}

func TestDecodeMissingFieldsAreZero(t *testing.T) {
	name := "Ocio"
	c, err := decode[core.Category](document{ID: "c1", Fields: map[string]value{"name": {StringValue: &name}}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.ID != "c1" || c.Name != "Ocio" || c.Icon != "" {
		t.Fatalf("unexpected category: %+v", c)
	}
}

func TestDecodeRejectsTypeMismatch(t *testing.T) {
	amount := "x"
	// a string where the entity expects a number
	_, err := decode[core.Transaction](document{ID: "t", Fields: map[string]value{"amount": {StringValue: &amount}}})
	if err == nil {
		t.Fatal("expected error")
	}
}
