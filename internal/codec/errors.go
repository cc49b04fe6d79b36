package codec

import "errors"

// Sentinel kinds for codec errors.
var (
	ErrMalformedDocument = errors.New("malformed timeline document")
)
