package pip

import (
	"errors"
	"fmt"
)

var (
	ErrPip           = errors.New("pip")
	ErrMissingPython = errors.New("pip: python interpreter not found")
)

// ListMissingFieldError reports a `pip list` JSON object lacking Field.
type ListMissingFieldError struct {
	Field string
}

func (e *ListMissingFieldError) Error() string {
	return fmt.Sprintf("pip packages json missing %q field", e.Field)
}

func (e *ListMissingFieldError) Unwrap() error { return ErrPip }

// ListInvalidJSONError carries `pip list` output that is not valid JSON.
type ListInvalidJSONError struct {
	Output string
}

func (e *ListInvalidJSONError) Error() string {
	return fmt.Sprintf("pip packages output isn't valid json: %q", e.Output)
}

func (e *ListInvalidJSONError) Unwrap() error { return ErrPip }

// ListInvalidLegacyFormatError carries legacy `pip list` output that does not
// follow the "<name> (<version>)" line format.
type ListInvalidLegacyFormatError struct {
	Output string
}

func (e *ListInvalidLegacyFormatError) Error() string {
	return fmt.Sprintf("pip packages output isn't in the expected legacy format: %q", e.Output)
}

func (e *ListInvalidLegacyFormatError) Unwrap() error { return ErrPip }
