package evidence

import "errors"

// ErrInvalidOption indicates a functional option was given a value
// outside its valid range (e.g. a non-positive pass count). Option
// errors surface at configuration time; the engine's computation itself
// is total and never returns an error for graph content.
var ErrInvalidOption = errors.New("invalid option value")

// Note: lookups against an archive return store.ErrNotFound; the engine
// deliberately has no error path for malformed graphs or patches —
// dangling references degrade to the 0.6 default and invalid patch
// targets are no-ops.
