package record_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/trustsphere/trustsphere/business/core/record"
	"github.com/trustsphere/trustsphere/business/sys/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestEncodeDecode(t *testing.T) {
	t.Log("Given the need to encode and decode record notes.")
	{
		t.Log("\tTest 0:\tWhen encoding an attendance payload.")
		{
			data := map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			}

			b, err := record.Encode(record.TypeAttendance, data)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to encode the payload: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to encode the payload.", success)

			if len(b) > record.MaxNoteBytes {
				t.Fatalf("\t%s\tShould stay within the note size limit: got %d bytes", failed, len(b))
			}
			t.Logf("\t%s\tShould stay within the note size limit.", success)

			note := record.Decode(b)
			if !note.Decoded() {
				t.Fatalf("\t%s\tShould decode back into a structured record.", failed)
			}
			t.Logf("\t%s\tShould decode back into a structured record.", success)

			rec := note.Record
			if rec.App != record.AppTag {
				t.Errorf("\t%s\tShould carry the app tag: exp[%s] got[%s]", failed, record.AppTag, rec.App)
			} else {
				t.Logf("\t%s\tShould carry the app tag.", success)
			}

			if rec.Type != record.TypeAttendance {
				t.Errorf("\t%s\tShould carry the record type: exp[%s] got[%s]", failed, record.TypeAttendance, rec.Type)
			} else {
				t.Logf("\t%s\tShould carry the record type.", success)
			}

			if rec.Timestamp.IsZero() {
				t.Errorf("\t%s\tShould carry an encode-time timestamp.", failed)
			} else {
				t.Logf("\t%s\tShould carry an encode-time timestamp.", success)
			}
		}
	}
}

func TestSizeLimit(t *testing.T) {
	t.Log("Given the need to reject oversized record payloads.")
	{
		t.Log("\tTest 0:\tWhen encoding a payload beyond the note limit.")
		{
			data := map[string]any{
				"sessionId":   "ses-100",
				"studentHash": strings.Repeat("x", record.MaxNoteBytes),
			}

			if _, err := record.Encode(record.TypeAttendance, data); !errors.Is(err, record.ErrPayloadTooLarge) {
				t.Fatalf("\t%s\tShould get ErrPayloadTooLarge: %v", failed, err)
			}
			t.Logf("\t%s\tShould get ErrPayloadTooLarge.", success)
		}

		t.Log("\tTest 1:\tWhen encoding a payload just inside the note limit.")
		{
			data := map[string]any{
				"sessionId":   "ses-100",
				"studentHash": strings.Repeat("x", 700),
			}

			b, err := record.Encode(record.TypeAttendance, data)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to encode the payload: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to encode the payload.", success)

			if len(b) > record.MaxNoteBytes {
				t.Fatalf("\t%s\tShould stay within the note size limit: got %d bytes", failed, len(b))
			}
			t.Logf("\t%s\tShould stay within the note size limit.", success)
		}
	}
}

func TestDecodeDegraded(t *testing.T) {
	t.Log("Given the need to survive foreign and malformed notes.")
	{
		t.Log("\tTest 0:\tWhen decoding bytes that are not JSON.")
		{
			raw := []byte("not json at all")

			note := record.Decode(raw)
			if note.Decoded() {
				t.Fatalf("\t%s\tShould degrade to a raw note.", failed)
			}
			t.Logf("\t%s\tShould degrade to a raw note.", success)

			if string(note.Raw) != string(raw) {
				t.Fatalf("\t%s\tShould preserve the raw bytes unchanged.", failed)
			}
			t.Logf("\t%s\tShould preserve the raw bytes unchanged.", success)
		}

		t.Log("\tTest 1:\tWhen decoding a foreign JSON note with an odd timestamp.")
		{
			foreign, err := json.Marshal(map[string]any{
				"app":       "SomeOtherApp",
				"type":      "attendance",
				"data":      map[string]any{"sessionId": "x"},
				"timestamp": "yesterday",
			})
			if err != nil {
				t.Fatalf("\t%s\tShould be able to build the fixture: %v", failed, err)
			}

			note := record.Decode(foreign)
			if !note.Decoded() {
				t.Fatalf("\t%s\tShould still decode into a structured record.", failed)
			}
			t.Logf("\t%s\tShould still decode into a structured record.", success)

			if !note.Record.Timestamp.IsZero() {
				t.Errorf("\t%s\tShould leave the zero time for an unparseable timestamp.", failed)
			} else {
				t.Logf("\t%s\tShould leave the zero time for an unparseable timestamp.", success)
			}
		}

		t.Log("\tTest 2:\tWhen decoding an empty note.")
		{
			note := record.Decode(nil)
			if note.Decoded() || note.Raw != nil {
				t.Fatalf("\t%s\tShould produce an empty note.", failed)
			}
			t.Logf("\t%s\tShould produce an empty note.", success)
		}
	}
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate record payloads against their schema.")
	{
		t.Log("\tTest 0:\tWhen a payload satisfies a field through an alias.")
		{
			data := map[string]any{
				"sessionId":   "ses-100",
				"studentHash": "0xabc",
			}

			if err := record.Check(record.TypeAttendance, data); err != nil {
				t.Fatalf("\t%s\tShould accept studentHash for studentId: %v", failed, err)
			}
			t.Logf("\t%s\tShould accept studentHash for studentId.", success)
		}

		t.Log("\tTest 1:\tWhen a payload is missing two required fields.")
		{
			err := record.Check(record.TypeVote, map[string]any{})
			if err == nil {
				t.Fatalf("\t%s\tShould reject the payload.", failed)
			}
			t.Logf("\t%s\tShould reject the payload.", success)

			fields := validate.GetFieldErrors(err)
			if len(fields) != 2 {
				t.Fatalf("\t%s\tShould report every missing field at once: exp[2] got[%d]", failed, len(fields))
			}
			t.Logf("\t%s\tShould report every missing field at once.", success)
		}

		t.Log("\tTest 2:\tWhen a required field is present but empty.")
		{
			data := map[string]any{
				"hash": "",
			}

			if err := record.Check(record.TypeComplaint, data); err == nil {
				t.Fatalf("\t%s\tShould treat an empty string as missing.", failed)
			}
			t.Logf("\t%s\tShould treat an empty string as missing.", success)
		}

		t.Log("\tTest 3:\tWhen parsing record types.")
		{
			if _, err := record.ParseType("certificate"); err != nil {
				t.Fatalf("\t%s\tShould accept a known type: %v", failed, err)
			}
			t.Logf("\t%s\tShould accept a known type.", success)

			if _, err := record.ParseType("diploma"); err == nil {
				t.Fatalf("\t%s\tShould reject an unknown type.", failed)
			}
			t.Logf("\t%s\tShould reject an unknown type.", success)
		}
	}
}
