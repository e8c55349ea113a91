package brackets

import "errors"

// Generator failures are plain validation errors, returned as values so
// callers can render a precise message without unwinding request state.
var (
	ErrInsufficientParticipants = errors.New("not enough participants for the requested format")
	ErrInvalidSeeding           = errors.New("participant seeds must be distinct integers within the field size")
	ErrTooManyGroups            = errors.New("requested group count exceeds the supported label set")
	ErrInvalidGroupCount        = errors.New("group stage requires at least two groups")
)
