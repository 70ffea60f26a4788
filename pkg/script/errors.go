package script

import "errors"

var (
	// ErrParse marks lines the tokenizer or block parser cannot read.
	ErrParse = errors.New("script: parse error")

	// ErrScriptNotFound is returned when a call names a script the store
	// does not have.
	ErrScriptNotFound = errors.New("script: script not found")

	// ErrMaxCallDepth is returned when nested calls exceed MaxCallDepth.
	ErrMaxCallDepth = errors.New("script: max call depth exceeded")

	// ErrArityMismatch is returned when a multi-variable for value does not
	// split into exactly one part per variable.
	ErrArityMismatch = errors.New("script: arity mismatch")
)
