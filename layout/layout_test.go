package layout

import (
	"reflect"
	"testing"

	"github.com/quillmark/fieldkit/field"
	"github.com/quillmark/fieldkit/geometry"
)

var twoSignatories = []field.Signatory{
	{Name: "Ada Lovelace", Email: "ada@example.com", Role: "Disclosing Party"},
	{Name: "Grace Hopper", Email: "grace@example.com", Role: "Receiving Party"},
}

func TestProposeTwoSignatories(t *testing.T) {
	fields := Propose(twoSignatories, 3)

	if len(fields) != 4 {
		t.Fatalf("expected 4 fields (2 signature + 2 date), got %d", len(fields))
	}

	kinds := map[field.Kind]int{}
	for _, f := range fields {
		kinds[f.Kind]++
		if f.PageNumber != 3 {
			t.Errorf("field %s on page %d, want 3", f.ID, f.PageNumber)
		}
		if !geometry.Letter.Contains(f.Rect) {
			t.Errorf("field %s escapes the page: %+v", f.ID, f.Rect)
		}
	}
	if kinds[field.KindSignature] != 2 || kinds[field.KindDate] != 2 {
		t.Errorf("kind counts = %v, want 2 signature and 2 date", kinds)
	}

	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			if fields[i].Rect.Intersects(fields[j].Rect) {
				t.Errorf("fields %s and %s overlap", fields[i].ID, fields[j].ID)
			}
		}
	}
}

func TestProposeIsDeterministic(t *testing.T) {
	first := Propose(twoSignatories, 3)
	second := Propose(twoSignatories, 3)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different proposals")
	}
}

func TestProposeDatesBelowSignatures(t *testing.T) {
	fields := Propose(twoSignatories, 1)
	for i := 0; i < len(fields); i += 2 {
		sig, date := fields[i], fields[i+1]
		if sig.Kind != field.KindSignature || date.Kind != field.KindDate {
			t.Fatalf("unexpected field order at %d: %v, %v", i, sig.Kind, date.Kind)
		}
		if date.Rect.Y <= sig.Rect.Bottom() {
			t.Errorf("date stamp not below signature stamp for signatory %d", sig.SignatoryIndex)
		}
		if date.Rect.X != sig.Rect.X+DateIndent {
			t.Errorf("date indent = %v, want %v", date.Rect.X-sig.Rect.X, DateIndent)
		}
	}
}

func TestProposeMissingEmailStillPlaced(t *testing.T) {
	signatories := []field.Signatory{{Name: "No Contact"}}
	fields := Propose(signatories, 2)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields for signatory without email, got %d", len(fields))
	}
}

func TestProposeLabels(t *testing.T) {
	fields := Propose(twoSignatories, 1)
	if fields[0].Label != "Ada Lovelace - Signature" {
		t.Errorf("label = %q", fields[0].Label)
	}
	if fields[1].Label != "Ada Lovelace - Date" {
		t.Errorf("label = %q", fields[1].Label)
	}
	if fields[2].Label != "Grace Hopper - Signature" {
		t.Errorf("label = %q", fields[2].Label)
	}
}

func TestProposeManySignatoriesStaysOnPage(t *testing.T) {
	signatories := make([]field.Signatory, 12)
	for i := range signatories {
		signatories[i] = field.Signatory{Name: "Party"}
	}
	fields := Propose(signatories, 5)
	if len(fields) != 24 {
		t.Fatalf("expected 24 fields, got %d", len(fields))
	}
	for _, f := range fields {
		if !geometry.Letter.Contains(f.Rect) {
			t.Errorf("field %s escapes the page: %+v", f.ID, f.Rect)
		}
	}
}

func TestProposeClampsLastPage(t *testing.T) {
	fields := Propose(twoSignatories, 0)
	for _, f := range fields {
		if f.PageNumber != 1 {
			t.Errorf("page number = %d, want 1", f.PageNumber)
		}
	}
}

func TestProposedIDsAreStable(t *testing.T) {
	fields := Propose(twoSignatories, 3)
	want := []string{"signature-0", "date-0", "signature-1", "date-1"}
	for i, f := range fields {
		if f.ID != want[i] {
			t.Errorf("field %d id = %q, want %q", i, f.ID, want[i])
		}
	}
}
