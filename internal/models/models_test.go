package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorValidateOK(t *testing.T) {
	a := &Author{FirstName: "Mary", LastName: "Muller"}
	require.NoError(t, a.Validate())
}

func TestAuthorValidateCollectsAllViolations(t *testing.T) {
	a := &Author{FirstName: "", LastName: "X"}
	err := a.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, "firstName should not be empty!")
	assert.Contains(t, verr.Violations, "lastName length should be between 2 and 50.")
	// both violations joined into one message
	assert.Contains(t, err.Error(), ", ")
}

func TestAuthorValidateBlankIsNotEmptyButInvalid(t *testing.T) {
	a := &Author{FirstName: "   ", LastName: "Muller"}
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firstName should not be empty!")
}

func TestAuthorValidateTooLong(t *testing.T) {
	a := &Author{FirstName: strings.Repeat("a", 51), LastName: "Muller"}
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firstName length should be between 2 and 50.")
}

func TestDocumentValidate(t *testing.T) {
	d := &Document{Title: "T1", Body: "This is a test document."}
	require.NoError(t, d.Validate())

	d = &Document{Title: "T", Body: ""}
	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title length should be between 2 and 50.")
	assert.Contains(t, err.Error(), "body should not be empty!")
}

func TestNotFoundErrorMessages(t *testing.T) {
	assert.Equal(t, "Author id not found - Id: 999", NewAuthorNotFound(999).Error())
	assert.Equal(t, "document id not found - Id: 7", NewDocumentNotFound(7).Error())
	assert.Equal(t, "Document id not found - Id: 7", NewReferenceNotFound(7).Error())

	var nf *NotFoundError
	require.True(t, errors.As(error(NewAuthorNotFound(1)), &nf))
	assert.Equal(t, "author", nf.Entity)
	assert.Equal(t, 1, nf.ID)
}
