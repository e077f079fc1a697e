package record

import (
	"github.com/trustsphere/trustsphere/business/sys/validate"
)

// field declares a required payload key. The off-chain submission path
// and the on-chain note can use different names for the same semantic
// value (the note carries a one-way hash, never the raw identifier), so
// a field may be satisfied by any of its aliases.
type field struct {
	name    string
	aliases []string
}

// schema maps each record type to its required payload fields.
var schema = map[Type][]field{
	TypeAttendance: {
		{name: "sessionId"},
		{name: "studentId", aliases: []string{"studentHash"}},
	},
	TypeVote: {
		{name: "electionId"},
		{name: "anonymousToken", aliases: []string{"choiceHash"}},
	},
	TypeComplaint: {
		{name: "hash"},
	},
	TypeCertificate: {
		{name: "title", aliases: []string{"event"}},
		{name: "recipientId", aliases: []string{"student"}},
	},
}

// Check validates the payload carries every required field for the
// specified type. It is a pure function and reports all missing fields
// at once rather than stopping at the first.
func Check(typ Type, data map[string]any) error {
	fields, exists := schema[typ]
	if !exists {
		return validate.FieldErrors{
			{Field: "type", Err: "invalid record type, must be one of: attendance, vote, complaint, certificate"},
		}
	}

	var missing validate.FieldErrors
	for _, fld := range fields {
		if present(data, fld.name) {
			continue
		}

		found := false
		for _, alias := range fld.aliases {
			if present(data, alias) {
				found = true
				break
			}
		}
		if found {
			continue
		}

		missing = append(missing, validate.FieldError{
			Field: fld.name,
			Err:   "missing required field",
		})
	}

	if len(missing) > 0 {
		return missing
	}

	return nil
}

// MissingFields returns the names of the required fields absent from the
// payload. It is the error-string form of Check used by verification.
func MissingFields(typ Type, data map[string]any) []string {
	err := Check(typ, data)
	if err == nil {
		return nil
	}

	fieldErrors := validate.GetFieldErrors(err)
	names := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		names = append(names, fe.Field)
	}

	return names
}

// present reports whether the payload carries a non-empty value for the
// specified key.
func present(data map[string]any, key string) bool {
	value, exists := data[key]
	if !exists || value == nil {
		return false
	}

	if s, ok := value.(string); ok {
		return s != ""
	}

	return true
}
