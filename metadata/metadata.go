// Package metadata serializes the in-session field state into the versioned
// transport payload consumed by the e-signature send call, and parses it
// back. The payload travels as an HTTP response header value and as a
// session-scoped string, so it carries only small field and signatory
// records, never binary data, and always stays in document points.
package metadata

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/blake2b"

	_ "embed"

	"github.com/quillmark/fieldkit/field"
)

// Version is the payload format version stamped at encode time.
const Version = "1.0"

//go:embed field-metadata-v1.schema.json
var schemaJSON []byte

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SignatoryInfo is the minimal signatory projection carried on the wire.
type SignatoryInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Payload is the wire format carrying field geometry and signatory info from
// the editing session to the downstream signature-sending call. It is
// created once per send and consumed exactly once.
type Payload struct {
	Version         string                 `json:"version"`
	GeneratedAt     time.Time              `json:"generatedAt"`
	SignatureFields []field.SignatureField `json:"signatureFields"`
	Signatories     []SignatoryInfo        `json:"signatories"`
}

// Encode freezes the given fields and signatories into the transport JSON,
// stamping the version and generation time. No coordinate transformation
// happens here; geometry stays in document points.
func Encode(fields []field.SignatureField, signatories []field.Signatory) (string, error) {
	return EncodeAt(fields, signatories, time.Now().UTC())
}

// EncodeAt is Encode with an explicit generation time.
func EncodeAt(fields []field.SignatureField, signatories []field.Signatory, at time.Time) (string, error) {
	p := Payload{
		Version:         Version,
		GeneratedAt:     at,
		SignatureFields: fields,
		Signatories:     make([]SignatoryInfo, 0, len(signatories)),
	}
	if p.SignatureFields == nil {
		p.SignatureFields = []field.SignatureField{}
	}
	for _, s := range signatories {
		p.Signatories = append(p.Signatories, SignatoryInfo{
			Name:  s.Name,
			Email: s.Email,
			Role:  s.Role,
		})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata payload: %w", err)
	}
	return string(data), nil
}

// Decode parses an encoded payload and returns its signature fields, or nil
// if the input is malformed in any way. Callers treat nil as "no prior
// placement" and fall back to the layout proposer; metadata can legitimately
// be absent or corrupt on a first-time generation, so this is never an
// error.
func Decode(encoded string) []field.SignatureField {
	p, ok := DecodePayload(encoded)
	if !ok {
		return nil
	}
	return p.SignatureFields
}

// DecodePayload parses and validates a full payload. ok is false for any
// malformed input: bad JSON, a schema violation, or an unsupported version.
func DecodePayload(encoded string) (Payload, bool) {
	if strings.TrimSpace(encoded) == "" {
		return Payload{}, false
	}

	var instance any
	if err := json.Unmarshal([]byte(encoded), &instance); err != nil {
		return Payload{}, false
	}
	if err := compiledSchema().Validate(instance); err != nil {
		return Payload{}, false
	}

	var p Payload
	if err := json.Unmarshal([]byte(encoded), &p); err != nil {
		return Payload{}, false
	}
	if !strings.HasPrefix(p.Version, "1.") {
		return Payload{}, false
	}
	return p, true
}

// Digest returns the BLAKE2b-256 hex digest of an encoded payload. The
// digest rides alongside the header-carried payload so transport-level
// corruption is detectable without trusting the JSON itself.
func Digest(encoded string) string {
	sum := blake2b.Sum256([]byte(encoded))
	return hex.EncodeToString(sum[:])
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

func compiledSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		const name = "field-metadata-v1.schema.json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, bytes.NewReader(schemaJSON)); err != nil {
			panic(fmt.Sprintf("metadata: invalid embedded schema: %v", err))
		}
		s, err := compiler.Compile(name)
		if err != nil {
			panic(fmt.Sprintf("metadata: failed to compile embedded schema: %v", err))
		}
		schema = s
	})
	return schema
}
