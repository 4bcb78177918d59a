package kit

import "github.com/pkg/errors"

// The closed error taxonomy of spec §7. Most of these conditions are
// absorbed locally (as a null Kit or an empty scan result) rather than
// propagated, per §7; they're named here so that the few call sites which
// do need to distinguish them (tests, and the document-level
// ErrSchemaInvalid diagnostic) can use errors.Is instead of string matching.
var (
	// ErrNotFound: resource absent (no binary, no directory, no variable).
	ErrNotFound = errors.New("not found")
	// ErrProbeFailed: non-zero exit or unrecognized output from a candidate.
	ErrProbeFailed = errors.New("probe failed")
	// ErrActivationFailed: vendor activation produced no environment or a
	// missing/empty INCLUDE.
	ErrActivationFailed = errors.New("vendor environment activation failed")
	// ErrSchemaInvalid is the one distinguished terminal failure of §7: a
	// syntactically valid but schema-invalid kits document.
	ErrSchemaInvalid = errors.New("kits document failed schema validation")
)
