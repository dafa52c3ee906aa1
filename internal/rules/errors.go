package rules

import "errors"

var (
	// ErrMalformedRule is returned when a label's value is not a string, a list
	// of strings, or a list of {all, any} groups.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrUnknownAnchor is returned when an anchor references a label that is not
	// defined in the rule table.
	ErrUnknownAnchor = errors.New("unknown anchor")

	// ErrNestedAnchor is returned when an anchor references a label whose own
	// patterns still contain an anchor. Anchors are expanded in a single pass.
	ErrNestedAnchor = errors.New("nested anchor")

	// ErrBadPattern is returned when a glob pattern cannot be compiled.
	ErrBadPattern = errors.New("invalid glob pattern")
)
