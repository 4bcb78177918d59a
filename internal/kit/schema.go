package kit

import (
	_ "embed"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// ValidationError describes a single JSON-schema violation, keyed by the
// dataPath of the offending value so callers can report precisely which
// kit and which field failed (spec §4.G: "schema violations are reported
// per-offending-kit, not just document-wide").
type ValidationError struct {
	Field       string
	Description string
}

func (v ValidationError) Error() string {
	return v.Field + ": " + v.Description
}

// ValidateDocument checks raw (already-JSONC-stripped) JSON bytes against
// the kits-document schema and returns one ValidationError per violation.
// A nil, empty slice means the document is schema-valid.
func ValidateDocument(raw []byte) ([]ValidationError, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to run kits document schema validation")
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, ValidationError{
			Field:       e.Field(),
			Description: e.Description(),
		})
	}
	return violations, nil
}
