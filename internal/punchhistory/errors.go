package punchhistory

import "fmt"

// ParseError represents a body that could not be turned into a document tree.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// StructureError represents an expected element that is absent from the page.
// Selector names the lookup that failed (a CSS selector, or a text-node
// position for the unlabelled fields).
type StructureError struct {
	Selector string
	Message  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("structure not found: %s: %s", e.Selector, e.Message)
}

// ValidationError represents an extracted value that does not have the
// expected shape.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s (%q): %s", e.Field, e.Value, e.Message)
}
