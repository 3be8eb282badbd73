package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quillmark/fieldkit/editor"
	"github.com/quillmark/fieldkit/field"
	"github.com/quillmark/fieldkit/geometry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Session ids are unguessable; the browser origin adds nothing here.
	CheckOrigin: func(*http.Request) bool { return true },
}

// pointerEvent is one message on the session event stream. Type selects the
// operation; the remaining fields are read per type.
type pointerEvent struct {
	Type string `json:"type"`

	// FieldID targets a field for down, select and remove events.
	FieldID string `json:"fieldId,omitempty"`

	// Handle marks a pointer-down on the resize handle.
	Handle bool `json:"handle,omitempty"`

	// X and Y are screen pixels for pointer events and document points
	// for add events.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// RenderedWidthPx rescales the session on scale events.
	RenderedWidthPx float64 `json:"renderedWidthPx,omitempty"`

	// Kind, SignatoryIndex and Page describe the field on add events.
	Kind           string `json:"kind,omitempty"`
	SignatoryIndex int    `json:"signatoryIndex,omitempty"`
	Page           int    `json:"page,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := s.log.With(zap.String("session_id", sess.id))
	log.Debug("event stream opened")

	for {
		var ev pointerEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("event stream read failed", zap.Error(err))
			}
			return
		}

		sess.mu.Lock()
		if sess.closed {
			sess.mu.Unlock()
			_ = conn.WriteJSON(errorResponse{Error: "session already sent"})
			return
		}
		applied := applyEvent(sess.editor, ev)
		snap := snapshotLocked(sess)
		sess.mu.Unlock()

		if applied {
			pointerEventsTotal.WithLabelValues(ev.Type).Inc()
		} else {
			log.Debug("ignored event", zap.String("type", ev.Type))
		}

		if err := conn.WriteJSON(snap); err != nil {
			log.Warn("event stream write failed", zap.Error(err))
			return
		}
	}
}

// applyEvent dispatches one event onto the editor. Unknown types and
// malformed payloads are ignored; the stream never dies on bad input.
func applyEvent(ed *editor.Session, ev pointerEvent) bool {
	switch ev.Type {
	case "down":
		ed.PointerDown(editor.Target{FieldID: ev.FieldID, Handle: ev.Handle}, geometry.PixelPoint{X: ev.X, Y: ev.Y})
	case "move":
		ed.PointerMove(geometry.PixelPoint{X: ev.X, Y: ev.Y})
	case "up":
		ed.PointerUp()
	case "leave":
		ed.PointerLeave()
	case "select":
		ed.SelectField(ev.FieldID)
	case "remove":
		ed.RemoveField(ev.FieldID)
	case "scale":
		ed.SetScale(geometry.NewScale(ev.RenderedWidthPx, ed.Store().Page().Width))
	case "add":
		kind := field.Kind(ev.Kind)
		w, h := field.DefaultSize(kind)
		page := ev.Page
		if page < 1 {
			page = 1
		}
		_, ok := ed.Store().Add(kind, ev.SignatoryIndex, page, geometry.Rect{
			X: ev.X, Y: ev.Y, Width: w, Height: h,
		})
		return ok
	default:
		return false
	}
	return true
}
