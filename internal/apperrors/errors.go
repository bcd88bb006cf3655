package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrPageNotFound is returned when a portal page template does not exist.
type ErrPageNotFound struct {
	Page string
}

// Error implements the error interface.
func (e *ErrPageNotFound) Error() string {
	return fmt.Sprintf("portal page %q is not defined", e.Page)
}

// Is allows for error checking with errors.Is().
func (e *ErrPageNotFound) Is(target error) bool {
	_, ok := target.(*ErrPageNotFound)
	return ok
}

// NewPageNotFoundError creates a specific error for a missing page template.
func NewPageNotFoundError(page string) *ErrPageNotFound {
	return &ErrPageNotFound{Page: page}
}
