package service

import "errors"

var (
	// ErrNotFound reports that a referenced recipe, entry or profile
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports input rejected before any mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported reports an operation the record cannot support,
	// such as reweighting an entry that has no source recipe.
	ErrUnsupported = errors.New("unsupported operation")
)
