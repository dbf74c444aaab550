package transcribe

import "errors"

// ErrInvalidFormat indicates an unsupported response format was requested.
var ErrInvalidFormat = errors.New("invalid response format")
