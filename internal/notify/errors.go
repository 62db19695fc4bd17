package notify

import "errors"

// ErrValidation marks a malformed create request, rejected before any write.
// Callers should fix the input rather than retry.
var ErrValidation = errors.New("invalid notification input")
