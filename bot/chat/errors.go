package chat

import "errors"

var (
	ErrUnexpectedInput = errors.New("unexpected input for step")
	ErrUnknownStep     = errors.New("step not found")
	ErrTransitionLoop  = errors.New("too many chained transitions")
	ErrInvalidMessage  = errors.New("invalid outbound message")
)
