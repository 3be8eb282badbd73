// Package editor translates pointer gestures into field store mutations.
//
// The session is a reducer-style state machine: all gesture state lives in
// one explicit value instead of being mirrored across event handlers, so a
// stale scale or field reference can never be read mid-gesture.
package editor

import (
	"github.com/quillmark/fieldkit/field"
	"github.com/quillmark/fieldkit/geometry"
)

// State identifies the gesture the session is in.
type State int

const (
	// StateIdle means no gesture is active.
	StateIdle State = iota
	// StateDragging means a field body is being moved.
	StateDragging
	// StateResizing means a field's resize handle is being pulled.
	StateResizing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Target describes what a pointer-down landed on.
type Target struct {
	// FieldID is the field under the pointer, or "" for the page canvas.
	FieldID string
	// Handle is true when the pointer grabbed the field's resize handle
	// rather than its body.
	Handle bool
}

// Capture tracks pointer-capture ownership for the document canvas. Every
// transition into a gesture acquires exactly one capture and every
// transition out releases exactly that one; an asymmetric count is the
// editor's equivalent of a leaked event listener.
type Capture struct {
	held     string
	acquires int
	releases int
}

// Acquire records capture on behalf of the given field.
func (c *Capture) Acquire(fieldID string) {
	c.held = fieldID
	c.acquires++
}

// Release drops the current capture. Releasing when nothing is held is a
// no-op so forced resets stay symmetric.
func (c *Capture) Release() {
	if c.held == "" {
		return
	}
	c.held = ""
	c.releases++
}

// Held returns the field holding capture, or "".
func (c *Capture) Held() string {
	return c.held
}

// Balanced reports whether every acquire has been matched by a release.
func (c *Capture) Balanced() bool {
	return c.held == "" && c.acquires == c.releases
}

type dragState struct {
	fieldID string
	// grabOffset is the vector from the field's top-left corner to the
	// pointer at press time, in document points. Reapplying it on every
	// move reproduces the exact grab point instead of snapping the
	// corner to the pointer.
	grabOffset geometry.Point
}

type resizeState struct {
	fieldID      string
	startPointer geometry.Point
	startWidth   float64
	startHeight  float64
}

// Session is the pointer-driven editing session for one document. It owns no
// fields itself; all mutation goes through the store so clamping and
// invariant checks cannot be bypassed. Session methods are not safe for
// concurrent use; the event loop that dispatches pointer events is expected
// to be single-threaded.
type Session struct {
	store   *field.Store
	capture *Capture
	scale   geometry.Scale

	state  State
	drag   dragState
	resize resizeState

	// lastPointer is the last successfully converted pointer position in
	// document points. It substitutes for input that fails conversion
	// (invalid scale, NaN coordinates) so corrupt geometry never reaches
	// the store.
	lastPointer geometry.Point
}

// NewSession creates a session over the given store. The scale must be valid
// before pointer events arrive; use SetScale on every viewport or zoom
// change.
func NewSession(store *field.Store, scale geometry.Scale) *Session {
	return &Session{
		store:   store,
		capture: &Capture{},
		scale:   scale,
	}
}

// Store returns the underlying field store.
func (s *Session) Store() *field.Store {
	return s.store
}

// Capture exposes the pointer-capture registry, mainly for tests.
func (s *Session) Capture() *Capture {
	return s.capture
}

// State returns the current gesture state.
func (s *Session) State() State {
	return s.state
}

// ActiveField returns the field id of the gesture in progress, or "".
func (s *Session) ActiveField() string {
	switch s.state {
	case StateDragging:
		return s.drag.fieldID
	case StateResizing:
		return s.resize.fieldID
	}
	return ""
}

// SetScale installs the scale for subsequent pointer events. An invalid
// scale is ignored; the previous one stays in effect.
func (s *Session) SetScale(scale geometry.Scale) {
	if scale.Valid() {
		s.scale = scale
	}
}

// Scale returns the scale in effect.
func (s *Session) Scale() geometry.Scale {
	return s.scale
}

// PointerDown begins a gesture. Any gesture still in flight is forcibly
// finished first: pointer-up events can be lost when the pointer leaves the
// window, so a new press never trusts prior bookkeeping.
func (s *Session) PointerDown(target Target, pos geometry.PixelPoint) {
	s.reset()

	doc := s.toDocument(pos)

	if target.FieldID == "" {
		s.store.Select("")
		return
	}

	f, ok := s.store.Get(target.FieldID)
	if !ok {
		s.store.Select("")
		return
	}
	s.store.Select(f.ID)

	if target.Handle {
		s.state = StateResizing
		s.resize = resizeState{
			fieldID:      f.ID,
			startPointer: doc,
			startWidth:   f.Rect.Width,
			startHeight:  f.Rect.Height,
		}
	} else {
		s.state = StateDragging
		s.drag = dragState{
			fieldID:    f.ID,
			grabOffset: doc.Sub(f.Rect.TopLeft()),
		}
	}
	s.capture.Acquire(f.ID)
}

// PointerMove advances the active gesture. Outside a gesture it is a no-op.
func (s *Session) PointerMove(pos geometry.PixelPoint) {
	if s.state == StateIdle {
		return
	}

	doc := s.toDocument(pos)

	switch s.state {
	case StateDragging:
		if _, ok := s.store.Get(s.drag.fieldID); !ok {
			s.reset()
			return
		}
		topLeft := doc.Sub(s.drag.grabOffset)
		s.store.Move(s.drag.fieldID, topLeft.X, topLeft.Y)

	case StateResizing:
		if _, ok := s.store.Get(s.resize.fieldID); !ok {
			s.reset()
			return
		}
		delta := doc.Sub(s.resize.startPointer)
		s.store.Resize(s.resize.fieldID,
			s.resize.startWidth+delta.X,
			s.resize.startHeight+delta.Y)
	}
}

// PointerUp finishes the active gesture. The release itself performs no
// further mutation.
func (s *Session) PointerUp() {
	s.reset()
}

// PointerLeave finishes the active gesture when the pointer leaves the
// canvas, exactly like a release.
func (s *Session) PointerLeave() {
	s.reset()
}

// RemoveField deletes a field through the session. Removing the field a
// gesture is anchored to forces the session back to Idle and drops the
// captured state referencing it.
func (s *Session) RemoveField(id string) {
	if s.ActiveField() == id {
		s.reset()
	}
	s.store.Remove(id)
}

// SelectField is a selection-only transition with no geometry side effects.
func (s *Session) SelectField(id string) {
	s.store.Select(id)
}

// reset returns the session to Idle, releasing capture if held.
func (s *Session) reset() {
	s.state = StateIdle
	s.drag = dragState{}
	s.resize = resizeState{}
	s.capture.Release()
}

// toDocument converts a screen position through the current scale, falling
// back to the last-known-good position when conversion fails.
func (s *Session) toDocument(pos geometry.PixelPoint) geometry.Point {
	doc, ok := s.scale.ToDocument(pos)
	if !ok {
		return s.lastPointer
	}
	s.lastPointer = doc
	return doc
}
