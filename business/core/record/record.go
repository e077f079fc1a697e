// Package record implements the codec for the structured payloads this
// system commits to the chain. A record is serialized as compact JSON and
// embedded in a transaction note field, which bounds its size.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AppTag identifies notes produced by this system. Verification rejects
// notes carrying any other tag.
const AppTag = "TrustSphere"

// MaxNoteBytes is the chain's limit on the size of a note field.
const MaxNoteBytes = 1024

// ErrPayloadTooLarge indicates a serialized record exceeds the note
// field limit. The record is rejected whole, never truncated.
var ErrPayloadTooLarge = errors.New("note payload exceeds size limit")

// Set of known record types.
const (
	TypeAttendance  Type = "attendance"
	TypeVote        Type = "vote"
	TypeComplaint   Type = "complaint"
	TypeCertificate Type = "certificate"
)

// Type represents the closed set of record types.
type Type string

// ParseType converts the specified value into a known record type.
func ParseType(value string) (Type, error) {
	typ := Type(value)
	if _, exists := schema[typ]; !exists {
		return "", fmt.Errorf("invalid record type %q, must be one of: attendance, vote, complaint, certificate", value)
	}
	return typ, nil
}

// Record is the logical unit committed to the chain.
type Record struct {
	App       string         `json:"app"`
	Type      Type           `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Note is the result of decoding note bytes read back from the chain.
// When the bytes don't parse as a record, Raw carries them unchanged and
// Record is nil: callers must treat such a note as unverifiable, not as
// an error.
type Note struct {
	Record *Record `json:"record,omitempty"`
	Raw    []byte  `json:"raw,omitempty"`
}

// Decoded reports whether the note parsed as a structured record.
func (n Note) Decoded() bool {
	return n.Record != nil
}

// Encode builds the note bytes for a record of the specified type. The
// timestamp is set here at encode time, not supplied by the caller. The
// size limit is enforced before any network activity.
func Encode(typ Type, data map[string]any) ([]byte, error) {
	rec := Record{
		App:       AppTag,
		Type:      typ,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	if len(b) > MaxNoteBytes {
		return nil, fmt.Errorf("serialized record is %d bytes, limit is %d: %w", len(b), MaxNoteBytes, ErrPayloadTooLarge)
	}

	return b, nil
}

// Decode parses note bytes into a record. Bytes that are not a JSON
// object degrade to a raw note rather than failing, so foreign and
// malformed notes can still be reported on.
func Decode(b []byte) Note {
	if len(b) == 0 {
		return Note{}
	}

	var fields struct {
		App       string         `json:"app"`
		Type      Type           `json:"type"`
		Data      map[string]any `json:"data"`
		Timestamp string         `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return Note{Raw: b}
	}

	// Timestamps from foreign notes may not be RFC3339. A failed parse
	// leaves the zero time rather than degrading the whole note.
	ts, _ := time.Parse(time.RFC3339, fields.Timestamp)

	rec := Record{
		App:       fields.App,
		Type:      fields.Type,
		Data:      fields.Data,
		Timestamp: ts,
	}

	return Note{Record: &rec}
}
