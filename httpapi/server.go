// Package httpapi exposes editing sessions over HTTP. Each session wraps a
// field store and an editor driven by pointer events streamed over a
// websocket; sending freezes the session into a metadata payload and hands
// it to the e-signature provider.
package httpapi

import (
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quillmark/fieldkit/archive"
	"github.com/quillmark/fieldkit/editor"
	"github.com/quillmark/fieldkit/esign"
	"github.com/quillmark/fieldkit/field"
	"github.com/quillmark/fieldkit/geometry"
	"github.com/quillmark/fieldkit/layout"
	"github.com/quillmark/fieldkit/metadata"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata response headers. The payload rides in a header so the document
// response body stays untouched.
const (
	HeaderMetadata       = "X-Signature-Metadata"
	HeaderMetadataDigest = "X-Signature-Metadata-Digest"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fieldkit_active_sessions",
		Help: "Number of editing sessions currently open.",
	})
	pointerEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldkit_pointer_events_total",
		Help: "Pointer events applied to editing sessions.",
	}, []string{"type"})
	envelopesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldkit_envelopes_sent_total",
		Help: "Envelopes accepted by the e-signature provider.",
	})
)

// session is one editing session. All access goes through mu; the websocket
// reader and the REST handlers race otherwise.
type session struct {
	mu          sync.Mutex
	id          string
	documentID  string
	lastPage    int
	signatories []field.Signatory
	editor      *editor.Session
	closed      bool
}

// Server routes session traffic. It owns the session table; sessions are
// kept in memory only, the archive records what was actually sent.
type Server struct {
	log     *zap.Logger
	client  *esign.Client
	archive *archive.Archive

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer creates a server. The archive may be nil, in which case sent
// envelopes are not recorded.
func NewServer(log *zap.Logger, client *esign.Client, arc *archive.Archive) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:      log,
		client:   client,
		archive:  arc,
		sessions: make(map[string]*session),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /v1/sessions/{id}/events", s.handleEvents)
	mux.HandleFunc("POST /v1/sessions/{id}/send", s.handleSend)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type createSessionRequest struct {
	DocumentID      string            `json:"documentId"`
	LastPage        int               `json:"lastPage"`
	Signatories     []field.Signatory `json:"signatories"`
	RenderedWidthPx float64           `json:"renderedWidthPx,omitempty"`
}

type sessionSnapshot struct {
	SessionID  string                 `json:"sessionId"`
	DocumentID string                 `json:"documentId"`
	State      string                 `json:"state"`
	Selected   string                 `json:"selected,omitempty"`
	Fields     []field.SignatureField `json:"fields"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "documentId is required")
		return
	}
	if req.LastPage < 1 {
		req.LastPage = 1
	}

	store := field.NewStore(geometry.Letter, len(req.Signatories))
	store.Seed(layout.Propose(req.Signatories, req.LastPage))

	scale := geometry.ScaleOf(1)
	if req.RenderedWidthPx > 0 {
		scale = geometry.NewScale(req.RenderedWidthPx, geometry.Letter.Width)
	}

	sess := &session{
		id:          uuid.NewString(),
		documentID:  req.DocumentID,
		lastPage:    req.LastPage,
		signatories: req.Signatories,
		editor:      editor.NewSession(store, scale),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	activeSessions.Inc()

	s.log.Info("session created",
		zap.String("session_id", sess.id),
		zap.String("document_id", sess.documentID),
		zap.Int("signatories", len(req.Signatories)),
		zap.Int("proposed_fields", store.Len()))

	s.writeSnapshot(w, http.StatusCreated, sess, true)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.writeSnapshot(w, http.StatusOK, sess, true)
}

type sendResponse struct {
	EnvelopeID string `json:"envelopeId"`
	Digest     string `json:"digest"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	if s.client == nil {
		writeError(w, http.StatusServiceUnavailable, "provider not configured")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		writeError(w, http.StatusConflict, "session already sent")
		return
	}

	encoded, err := metadata.Encode(sess.editor.Store().Fields(), sess.signatories)
	if err != nil {
		s.log.Error("metadata encoding failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode metadata")
		return
	}
	payload, ok := metadata.DecodePayload(encoded)
	if !ok {
		s.log.Error("encoded payload failed validation", zap.String("session_id", sess.id))
		writeError(w, http.StatusInternalServerError, "failed to encode metadata")
		return
	}
	digest := metadata.Digest(encoded)

	env := esign.Envelope{
		DocumentID: sess.documentID,
		Records:    esign.ProjectFields(payload),
	}
	ref, err := s.client.SendEnvelope(r.Context(), env)
	if err != nil {
		if errors.Is(err, esign.ErrNoRecords) {
			writeError(w, http.StatusUnprocessableEntity, "session has no fields to send")
			return
		}
		s.log.Error("envelope send failed",
			zap.String("session_id", sess.id),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "provider rejected envelope")
		return
	}

	if s.archive != nil {
		rec := archive.Record{
			ID:          sess.id,
			Digest:      digest,
			ProviderRef: ref,
			Payload:     encoded,
		}
		if err := s.archive.Put(r.Context(), rec); err != nil {
			// The provider accepted the envelope; a bookkeeping
			// failure must not report the send as failed.
			s.log.Error("envelope archive failed",
				zap.String("session_id", sess.id),
				zap.Error(err))
		}
	}

	sess.closed = true
	activeSessions.Dec()
	envelopesSentTotal.Inc()

	s.log.Info("envelope sent",
		zap.String("session_id", sess.id),
		zap.String("provider_ref", ref),
		zap.Int("fields", len(payload.SignatureFields)))

	w.Header().Set(HeaderMetadata, encoded)
	w.Header().Set(HeaderMetadataDigest, digest)
	writeJSON(w, http.StatusOK, sendResponse{EnvelopeID: ref, Digest: digest})
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// writeSnapshot serializes the session state. When withMetadata is set the
// current field layout also rides in the metadata headers so callers can
// inspect the layout without opening the event stream.
func (s *Server) writeSnapshot(w http.ResponseWriter, status int, sess *session, withMetadata bool) {
	sess.mu.Lock()
	snap := snapshotLocked(sess)
	var encoded string
	if withMetadata {
		var err error
		encoded, err = metadata.Encode(sess.editor.Store().Fields(), sess.signatories)
		if err != nil {
			s.log.Error("metadata encoding failed", zap.Error(err))
			encoded = ""
		}
	}
	sess.mu.Unlock()

	if encoded != "" {
		w.Header().Set(HeaderMetadata, encoded)
		w.Header().Set(HeaderMetadataDigest, metadata.Digest(encoded))
	}
	writeJSON(w, status, snap)
}

func snapshotLocked(sess *session) sessionSnapshot {
	return sessionSnapshot{
		SessionID:  sess.id,
		DocumentID: sess.documentID,
		State:      sess.editor.State().String(),
		Selected:   sess.editor.Store().Selected(),
		Fields:     sess.editor.Store().Fields(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already written; an encode failure here has no
	// recovery path.
	_ = json.NewEncoder(w).Encode(v)
}
