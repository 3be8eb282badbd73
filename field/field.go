// Package field defines placeable signature stamps and the in-session store
// that owns them while an operator edits their positions.
package field

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/quillmark/fieldkit/geometry"
)

// Kind identifies what a placed stamp represents.
type Kind string

// Stamp kinds. KindText exists in the transport schema for forward
// compatibility but is not placed by the interactive editor.
const (
	KindSignature Kind = "signature"
	KindDate      Kind = "date"
	KindText      Kind = "text"
)

// Valid returns true for a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSignature, KindDate, KindText:
		return true
	}
	return false
}

var titleCaser = cases.Title(language.English)

// Caption returns the human-readable form of the kind, used in default
// field labels.
func (k Kind) Caption() string {
	return titleCaser.String(string(k))
}

// Minimum stamp sizes in document points. Signature stamps need more room
// than date stamps; the editor must never shrink a field below these, even
// mid-drag.
const (
	MinSignatureWidth  = 150.0
	MinSignatureHeight = 48.0
	MinDateWidth       = 110.0
	MinDateHeight      = 34.0
)

// Default stamp sizes used when a field is first placed.
const (
	DefaultSignatureWidth  = 200.0
	DefaultSignatureHeight = 64.0
	DefaultDateWidth       = 130.0
	DefaultDateHeight      = 40.0
)

// MinSize returns the minimum width and height for the kind.
func MinSize(k Kind) (width, height float64) {
	if k == KindSignature {
		return MinSignatureWidth, MinSignatureHeight
	}
	return MinDateWidth, MinDateHeight
}

// DefaultSize returns the initial width and height for the kind.
func DefaultSize(k Kind) (width, height float64) {
	if k == KindSignature {
		return DefaultSignatureWidth, DefaultSignatureHeight
	}
	return DefaultDateWidth, DefaultDateHeight
}

// Signatory is a party expected to sign the document. Signatories are
// supplied externally and are immutable from the editor's perspective; only
// their order matters here, since fields reference them by index.
type Signatory struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	ColorHex string `json:"colorHex,omitempty"`
}

// signatoryPalette assigns stable display colors by signatory order.
var signatoryPalette = []string{
	"#2563EB", // blue
	"#16A34A", // green
	"#D97706", // amber
	"#DC2626", // red
	"#7C3AED", // violet
	"#0891B2", // cyan
}

// ColorFor returns the display color for the signatory at the given index.
func ColorFor(index int) string {
	if index < 0 {
		index = 0
	}
	return signatoryPalette[index%len(signatoryPalette)]
}

// DefaultLabel builds the caption shown on a field when none was set.
func DefaultLabel(s Signatory, k Kind) string {
	return fmt.Sprintf("%s - %s", s.Name, k.Caption())
}

// SignatureField is one placeable stamp anchored to a page.
type SignatureField struct {
	// ID is an opaque unique identifier, stable across edits.
	ID string `json:"id"`

	// Kind is the stamp kind.
	Kind Kind `json:"kind"`

	// SignatoryIndex is the zero-based index into the ordered signatory
	// list; it determines color and label.
	SignatoryIndex int `json:"signatoryIndex"`

	// PageNumber is the 1-indexed page the field is anchored to.
	PageNumber int `json:"pageNumber"`

	// Rect is the field geometry in document points, origin top-left of
	// the page.
	Rect geometry.Rect `json:"geometry"`

	// Label is an optional human-readable caption.
	Label string `json:"label,omitempty"`
}
