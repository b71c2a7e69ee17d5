package annotation

import "errors"

var (
	// ErrUnterminatedBlock indicates an annotation was opened but its comment never closes.
	ErrUnterminatedBlock = errors.New("unterminated annotation block")

	// ErrMissingMethodIdentifier indicates a file documents a method (#name) but
	// contains no registration call naming it.
	ErrMissingMethodIdentifier = errors.New("missing method identifier")

	// ErrMalformedConf indicates a #conf body is not of the form "key" description.
	ErrMalformedConf = errors.New("malformed conf block")
)
