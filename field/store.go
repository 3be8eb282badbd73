package field

import (
	"math"

	"github.com/google/uuid"

	"github.com/quillmark/fieldkit/geometry"
)

// Store is the authoritative ordered collection of fields during an edit
// session. Every mutation leaves the bounds and minimum-size invariants
// intact. Operations are synchronous and total: a request referencing an
// unknown field id or an out-of-range signatory index is a silent no-op,
// because such requests arise from stale UI references during fast
// interaction, not from user-facing invalid input.
type Store struct {
	page           geometry.PageSize
	signatoryCount int
	fields         []SignatureField
	selected       string
}

// NewStore creates a store for a document with the given page size and
// signatory count.
func NewStore(page geometry.PageSize, signatoryCount int) *Store {
	if signatoryCount < 0 {
		signatoryCount = 0
	}
	return &Store{page: page, signatoryCount: signatoryCount}
}

// Page returns the fixed page dimensions.
func (s *Store) Page() geometry.PageSize {
	return s.page
}

// SignatoryCount returns the number of signatories fields may reference.
func (s *Store) SignatoryCount() int {
	return s.signatoryCount
}

// Fields returns a copy of the current fields in insertion order.
func (s *Store) Fields() []SignatureField {
	out := make([]SignatureField, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields.
func (s *Store) Len() int {
	return len(s.fields)
}

// Get returns the field with the given id.
func (s *Store) Get(id string) (SignatureField, bool) {
	if i := s.index(id); i >= 0 {
		return s.fields[i], true
	}
	return SignatureField{}, false
}

// Selected returns the id of the selected field, or "" if none.
func (s *Store) Selected() string {
	return s.selected
}

// Select updates the selection. An empty id clears it. Selecting an unknown
// id clears the selection rather than failing.
func (s *Store) Select(id string) {
	if id != "" && s.index(id) < 0 {
		id = ""
	}
	s.selected = id
}

// Add appends a new field with a freshly generated id. It returns ok=false
// if the kind is unknown or the signatory index does not reference an
// existing signatory. The initial geometry is normalized: non-finite input
// falls back to the kind's default size at the page origin, sizes are raised
// to the kind minimums, and the position is clamped into the page.
func (s *Store) Add(kind Kind, signatoryIndex, pageNumber int, r geometry.Rect) (SignatureField, bool) {
	if !kind.Valid() {
		return SignatureField{}, false
	}
	if signatoryIndex < 0 || signatoryIndex >= s.signatoryCount {
		return SignatureField{}, false
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	f := SignatureField{
		ID:             uuid.NewString(),
		Kind:           kind,
		SignatoryIndex: signatoryIndex,
		PageNumber:     pageNumber,
		Rect:           s.normalize(kind, r),
	}
	s.fields = append(s.fields, f)
	return f, true
}

// Seed replaces the store contents with proposed fields, keeping only those
// that survive normalization (valid kind and signatory index). Seeded field
// ids are preserved so re-seeding from the same proposal does not churn
// identifiers. Selection is cleared.
func (s *Store) Seed(fields []SignatureField) {
	s.fields = s.fields[:0]
	s.selected = ""
	for _, f := range fields {
		if !f.Kind.Valid() || f.ID == "" {
			continue
		}
		if f.SignatoryIndex < 0 || f.SignatoryIndex >= s.signatoryCount {
			continue
		}
		if s.index(f.ID) >= 0 {
			continue
		}
		if f.PageNumber < 1 {
			f.PageNumber = 1
		}
		f.Rect = s.normalize(f.Kind, f.Rect)
		s.fields = append(s.fields, f)
	}
}

// Move repositions the field's top-left corner, clamping so the field's full
// extent stays on the page. An out-of-bounds request is clamped, never
// rejected, so a drag can never get stuck. Non-finite coordinates are
// ignored.
func (s *Store) Move(id string, x, y float64) {
	i := s.index(id)
	if i < 0 || !isFinite(x) || !isFinite(y) {
		return
	}
	r := s.fields[i].Rect
	r.X = x
	r.Y = y
	s.fields[i].Rect = r.ClampInto(s.page)
}

// Resize changes the field's width and height, clamped below to the kind's
// minimums and above so the field does not extend past the page edge. The
// position is never renormalized by a resize. Non-finite sizes are ignored.
func (s *Store) Resize(id string, width, height float64) {
	i := s.index(id)
	if i < 0 || !isFinite(width) || !isFinite(height) {
		return
	}
	f := &s.fields[i]
	minW, minH := MinSize(f.Kind)
	f.Rect.Width = clampSize(width, minW, s.page.Width-f.Rect.X)
	f.Rect.Height = clampSize(height, minH, s.page.Height-f.Rect.Y)
}

// Remove deletes the field. Removing an unknown id is a no-op; removing the
// selected field clears the selection.
func (s *Store) Remove(id string) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.fields = append(s.fields[:i], s.fields[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
}

// ReconcileSignatories updates the signatory count after an external change
// to the signatory list. Fields whose index points past the end of the new
// list are deleted; a stale index must never survive a list change.
func (s *Store) ReconcileSignatories(count int) {
	if count < 0 {
		count = 0
	}
	s.signatoryCount = count
	kept := s.fields[:0]
	for _, f := range s.fields {
		if f.SignatoryIndex < count {
			kept = append(kept, f)
			continue
		}
		if s.selected == f.ID {
			s.selected = ""
		}
	}
	s.fields = kept
}

// normalize produces a valid geometry for the kind from arbitrary input.
func (s *Store) normalize(kind Kind, r geometry.Rect) geometry.Rect {
	if !r.IsFinite() {
		w, h := DefaultSize(kind)
		r = geometry.Rect{Width: w, Height: h}
	}
	minW, minH := MinSize(kind)
	if r.Width < minW {
		r.Width = minW
	}
	if r.Height < minH {
		r.Height = minH
	}
	if r.Width > s.page.Width {
		r.Width = s.page.Width
	}
	if r.Height > s.page.Height {
		r.Height = s.page.Height
	}
	return r.ClampInto(s.page)
}

func (s *Store) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.fields {
		if s.fields[i].ID == id {
			return i
		}
	}
	return -1
}

func clampSize(v, min, max float64) float64 {
	if max < min {
		max = min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
