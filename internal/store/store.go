package store

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by Find/Delete operations when no row exists
// for the given identifier. Services translate it into API-level not-found errors.
var ErrRecordNotFound = errors.New("record not found")

// AuthorRecord is the stored shape of an author.
type AuthorRecord struct {
	ID        int    `bson:"_id"`
	FirstName string `bson:"firstName"`
	LastName  string `bson:"lastName"`
}

// DocumentRecord is the stored shape of a document. Graph edges are kept as
// identifier sets rather than embedded records, so reference cycles cannot
// produce recursive structures.
type DocumentRecord struct {
	ID           int    `bson:"_id"`
	Title        string `bson:"title"`
	Body         string `bson:"body"`
	AuthorIDs    []int  `bson:"authorIds"`
	ReferenceIDs []int  `bson:"referenceIds"`
}

// Store is the entity store boundary. Each mutation is one atomic unit of
// work: the delete operations remove the dependent join edges and the row
// together, and a failure must leave neither applied.
type Store interface {
	AuthorExists(ctx context.Context, id int) (bool, error)
	FindAuthor(ctx context.Context, id int) (*AuthorRecord, error)
	FindAllAuthors(ctx context.Context) ([]AuthorRecord, error)
	// SaveAuthor inserts the record when ID is 0, assigning a fresh
	// identifier, and updates it in place otherwise.
	SaveAuthor(ctx context.Context, rec *AuthorRecord) (*AuthorRecord, error)
	// DeleteAuthor removes the author from every document's author set and
	// deletes the author row.
	DeleteAuthor(ctx context.Context, id int) error

	DocumentExists(ctx context.Context, id int) (bool, error)
	FindDocument(ctx context.Context, id int) (*DocumentRecord, error)
	FindAllDocuments(ctx context.Context) ([]DocumentRecord, error)
	// SaveDocument persists the row and replaces both edge sets.
	SaveDocument(ctx context.Context, rec *DocumentRecord) (*DocumentRecord, error)
	// DeleteDocument removes the document from every other document's
	// reference set and deletes the document row.
	DeleteDocument(ctx context.Context, id int) error
}
