package fountain

import (
	"errors"

	"github.com/handsomecheung/fountain/internal/flog"
)

// ErrInvalidInput is returned by NewEncoder for an empty payload or a file
// name exceeding 255 bytes, per spec.md §7. NewEncoder's other errors
// (block encoder construction, transfer id draw) are wrapped separately.
var ErrInvalidInput = errors.New("fountain: invalid input")

// ErrDecodeFailedPersistent is surfaced to the caller only when a block's
// RaptorQ decode keeps failing well past the overhead spec.md §7 allows
// (K + 2·Z extra symbols fed with no progress). Short of that threshold, a
// failed decode attempt is transient and the decoder simply waits for more
// symbols.
var ErrDecodeFailedPersistent = errors.New("fountain: persistent RaptorQ decode failure")

// Logger is re-exported from internal/flog so callers never need to import
// the internal package directly.
type Logger = flog.Logger
