// Package esign hands finished stamp coordinates to the third-party
// e-signature provider. The provider API is a fixed external collaborator:
// it accepts a list of per-field coordinate records per page and returns an
// envelope reference. This package only projects the metadata payload into
// the provider's schema; all geometry stays in document points.
package esign

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/quillmark/fieldkit/metadata"
)

// Common errors
var (
	ErrMissingBaseURL = errors.New("esign: base URL is required")
	ErrNoRecords      = errors.New("esign: envelope has no stamp records")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StampRecord is one placed stamp in the provider's per-field schema.
type StampRecord struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	PageNumber  int     `json:"page_number"`
	SignerEmail string  `json:"signer_email"`
	Kind        string  `json:"kind"`
	Label       string  `json:"label,omitempty"`
}

// Envelope is the send request body.
type Envelope struct {
	DocumentID string        `json:"document_id"`
	Records    []StampRecord `json:"records"`
}

// ProjectFields maps a frozen metadata payload into the provider's stamp
// records, resolving each field's signatory index to an email. Fields whose
// index points past the signatory list are skipped; the payload is history
// at this point and must not fail the send wholesale.
func ProjectFields(p Payload) []StampRecord {
	records := make([]StampRecord, 0, len(p.SignatureFields))
	for _, f := range p.SignatureFields {
		if f.SignatoryIndex < 0 || f.SignatoryIndex >= len(p.Signatories) {
			continue
		}
		records = append(records, StampRecord{
			X:           f.Rect.X,
			Y:           f.Rect.Y,
			Width:       f.Rect.Width,
			Height:      f.Rect.Height,
			PageNumber:  f.PageNumber,
			SignerEmail: p.Signatories[f.SignatoryIndex].Email,
			Kind:        string(f.Kind),
			Label:       f.Label,
		})
	}
	return records
}

// Payload is an alias kept local so callers pass the decoded metadata
// payload straight through.
type Payload = metadata.Payload

// Config configures the provider client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries uint64
}

// Client talks to the e-signature provider.
type Client struct {
	cfg Config
	hc  *http.Client
	log *zap.Logger
}

// NewClient creates a provider client. A nil logger disables logging.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: log,
	}, nil
}

type sendResponse struct {
	EnvelopeID string `json:"envelope_id"`
}

// SendEnvelope posts the envelope to the provider and returns the provider's
// envelope reference. Transient failures (network errors, 5xx) are retried
// with exponential backoff; 4xx responses fail immediately.
func (c *Client) SendEnvelope(ctx context.Context, env Envelope) (string, error) {
	if len(env.Records) == 0 {
		return "", ErrNoRecords
	}

	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("esign: failed to encode envelope: %w", err)
	}

	var envelopeID string
	attempt := 0
	operation := func() error {
		attempt++
		id, err := c.post(ctx, body)
		if err != nil {
			c.log.Warn("envelope send attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		envelopeID = id
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("esign: send failed after %d attempts: %w", attempt, err)
	}

	c.log.Info("envelope sent",
		zap.String("envelope_id", envelopeID),
		zap.Int("records", len(env.Records)))
	return envelopeID, nil
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/envelopes", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("provider returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(fmt.Errorf("provider rejected envelope: %d: %s",
			resp.StatusCode, bytes.TrimSpace(data)))
	}

	var out sendResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("invalid provider response: %w", err))
	}
	if out.EnvelopeID == "" {
		return "", backoff.Permanent(errors.New("provider response missing envelope_id"))
	}
	return out.EnvelopeID, nil
}
