package models

// Author is the API model for an author. ID 0 marks a record that has not
// been assigned an identifier by the store yet.
type Author struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName" validate:"notblank,min=2,max=50"`
	LastName  string `json:"lastName" validate:"notblank,min=2,max=50"`
}

// Validate checks the field constraints and returns a *ValidationError
// carrying every violation, or nil when the author is valid.
func (a *Author) Validate() error {
	return runValidation(a, map[string]string{
		"FirstName.notblank": "firstName should not be empty!",
		"FirstName.min":      "firstName length should be between 2 and 50.",
		"FirstName.max":      "firstName length should be between 2 and 50.",
		"LastName.notblank":  "lastName should not be empty!",
		"LastName.min":       "lastName length should be between 2 and 50.",
		"LastName.max":       "lastName length should be between 2 and 50.",
	})
}
