package models

import (
	"fmt"
	"strings"
)

// NotFoundError reports an operation on an author or document identifier
// that does not exist in the store.
type NotFoundError struct {
	Entity string // "author" or "document"
	ID     int
	msg    string
}

func (e *NotFoundError) Error() string { return e.msg }

func NewAuthorNotFound(id int) *NotFoundError {
	return &NotFoundError{Entity: "author", ID: id, msg: fmt.Sprintf("Author id not found - Id: %d", id)}
}

func NewDocumentNotFound(id int) *NotFoundError {
	return &NotFoundError{Entity: "document", ID: id, msg: fmt.Sprintf("document id not found - Id: %d", id)}
}

// NewReferenceNotFound reports a document referenced by another document that
// does not exist. Same class as NewDocumentNotFound, kept separate for the
// distinct message raised during reference resolution.
func NewReferenceNotFound(id int) *NotFoundError {
	return &NotFoundError{Entity: "document", ID: id, msg: fmt.Sprintf("Document id not found - Id: %d", id)}
}

// InvalidStateError reports a structural precondition violation, such as
// creating a document without any author.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

// NewDocumentWithoutAuthor is raised when a document is created with an empty
// author set. Updates deliberately skip this check.
func NewDocumentWithoutAuthor() *InvalidStateError {
	return &InvalidStateError{Reason: "No author is attached to the document. Please add at least one author to create the document."}
}

// ValidationError carries every field constraint violation of one payload.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Violations, ", ") }

// ErrorResponse is the JSON error body returned by the REST layer.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
