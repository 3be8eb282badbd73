// Package layout proposes default stamp positions for a freshly generated
// document, so the common case needs no manual placement at all.
package layout

import (
	"fmt"

	"github.com/quillmark/fieldkit/field"
	"github.com/quillmark/fieldkit/geometry"
)

// Placement constants in document points, tuned against the rendered
// document's signature section so proposed fields land on the printed
// signature blocks rather than floating in blank space.
const (
	// LeftMargin is the x position of signature stamps.
	LeftMargin = 72.0

	// DateIndent is the extra x offset of the date stamp below its
	// signature stamp.
	DateIndent = 16.0

	// SignatureDateGap is the vertical gap between a signature stamp and
	// its date stamp.
	SignatureDateGap = 8.0

	// BandGap is the vertical gap between consecutive signatory bands.
	BandGap = 24.0

	// FirstBandTop is the y position of the first signatory band on the
	// last page.
	FirstBandTop = 396.0
)

// BandHeight is the vertical extent of one signatory band including its
// trailing gap.
const BandHeight = field.DefaultSignatureHeight + SignatureDateGap + field.DefaultDateHeight + BandGap

// Propose computes the default signature+date stamp pair for every signatory,
// stacked in vertical bands on the last page of the document. The result is
// deterministic: identical signatory and page counts yield bit-identical
// coordinates and ids, so re-seeding a store from the same proposal never
// shifts anything. A signatory without an email is still placed; contact
// validation is not this engine's concern.
func Propose(signatories []field.Signatory, lastPage int) []field.SignatureField {
	return ProposeOn(geometry.Letter, signatories, lastPage)
}

// ProposeOn is Propose for an explicit page size.
func ProposeOn(page geometry.PageSize, signatories []field.Signatory, lastPage int) []field.SignatureField {
	if lastPage < 1 {
		lastPage = 1
	}

	fields := make([]field.SignatureField, 0, 2*len(signatories))
	for i, sig := range signatories {
		top := FirstBandTop + float64(i)*BandHeight

		// A band that would run past the page bottom is pinned to the
		// lowest position that still fits. Later bands then overlap,
		// which the operator resolves by dragging; every proposed field
		// must still satisfy the page bounds.
		bandExtent := field.DefaultSignatureHeight + SignatureDateGap + field.DefaultDateHeight
		if top+bandExtent > page.Height {
			top = page.Height - bandExtent
		}
		if top < 0 {
			top = 0
		}

		sigRect := geometry.Rect{
			X:      LeftMargin,
			Y:      top,
			Width:  field.DefaultSignatureWidth,
			Height: field.DefaultSignatureHeight,
		}.ClampInto(page)

		dateRect := geometry.Rect{
			X:      LeftMargin + DateIndent,
			Y:      top + field.DefaultSignatureHeight + SignatureDateGap,
			Width:  field.DefaultDateWidth,
			Height: field.DefaultDateHeight,
		}.ClampInto(page)

		fields = append(fields,
			field.SignatureField{
				ID:             proposedID(field.KindSignature, i),
				Kind:           field.KindSignature,
				SignatoryIndex: i,
				PageNumber:     lastPage,
				Rect:           sigRect,
				Label:          field.DefaultLabel(sig, field.KindSignature),
			},
			field.SignatureField{
				ID:             proposedID(field.KindDate, i),
				Kind:           field.KindDate,
				SignatoryIndex: i,
				PageNumber:     lastPage,
				Rect:           dateRect,
				Label:          field.DefaultLabel(sig, field.KindDate),
			},
		)
	}
	return fields
}

// proposedID builds the stable id of a proposed field. Editor-created fields
// get random ids instead; only proposal output needs to be reproducible.
func proposedID(kind field.Kind, signatoryIndex int) string {
	return fmt.Sprintf("%s-%d", kind, signatoryIndex)
}
