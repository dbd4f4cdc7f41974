package pdbfix

import (
	"fmt"
)

// InputNotFoundError is returned when the resolved structure of a template
// does not exist.
type InputNotFoundError struct {
	TemplateID string
	Path       string
	Err        error
}

func (err *InputNotFoundError) Error() string {
	return fmt.Sprintf("Resolved structure for template '%s' not found at "+
		"'%s': %s", err.TemplateID, err.Path, err.Err)
}

func (err *InputNotFoundError) Unwrap() error {
	return err.Err
}

// StructureRepairError is returned when the missing residues of a template
// could not be rebuilt, or when the rebuilt structure doesn't look like the
// template it came from.
type StructureRepairError struct {
	TemplateID string
	Err        error
}

func (err *StructureRepairError) Error() string {
	return fmt.Sprintf("Could not repair template '%s': %s",
		err.TemplateID, err.Err)
}

func (err *StructureRepairError) Unwrap() error {
	return err.Err
}

// AlignmentError is returned when the resolved sequence of a template cannot
// be embedded in its full sequence. Err is usually an *align.Error.
type AlignmentError struct {
	TemplateID string
	Err        error
}

func (err *AlignmentError) Error() string {
	return fmt.Sprintf("Template '%s': %s", err.TemplateID, err.Err)
}

func (err *AlignmentError) Unwrap() error {
	return err.Err
}
