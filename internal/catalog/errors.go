package catalog

import "errors"

var (
	// ErrFetchTimeout is returned when the catalog resource does not answer
	// within the configured timeout. The stored session set is untouched.
	ErrFetchTimeout = errors.New("catalog: fetch timed out")
	// ErrParse is returned when the payload is not valid JSON of a known
	// shape. The stored session set is untouched.
	ErrParse = errors.New("catalog: malformed payload")
	// ErrValidation is returned when the payload decodes but contains an
	// empty or invalid record set. The stored session set is untouched.
	ErrValidation = errors.New("catalog: invalid record set")
	// ErrEmptyPayload is returned when the resource responds with an empty
	// body.
	ErrEmptyPayload = errors.New("catalog: empty payload")
)
