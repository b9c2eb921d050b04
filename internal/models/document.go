package models

// Document is the API model for a document. Authors and References carry the
// graph edges: on writes only the identifiers inside them matter, on reads
// they are populated by the service (references one level deep only).
type Document struct {
	ID         int        `json:"id"`
	Title      string     `json:"title" validate:"notblank,min=2,max=50"`
	Body       string     `json:"body" validate:"notblank,min=2"`
	Authors    []Author   `json:"authors"`
	References []Document `json:"references"`
}

// Validate checks the field constraints and returns a *ValidationError
// carrying every violation, or nil when the document is valid.
// Edge identifiers are not checked here; the service resolves them against
// the store before any write.
func (d *Document) Validate() error {
	return runValidation(d, map[string]string{
		"Title.notblank": "Title should not be empty!",
		"Title.min":      "title length should be between 2 and 50.",
		"Title.max":      "title length should be between 2 and 50.",
		"Body.notblank":  "body should not be empty!",
		"Body.min":       "body length should be more than 2",
	})
}
