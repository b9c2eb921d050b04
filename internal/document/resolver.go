package document

import (
	"context"
	"errors"

	"github.com/patrick-ksn/dms/internal/models"
	"github.com/patrick-ksn/dms/internal/store"
)

// Resolver translates the identifier edges of an incoming document into a
// storable record. Every author and referenced document must exist at
// resolution time; the first missing identifier aborts the whole mutation
// before anything is written.
type Resolver struct {
	store store.Store
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve is pure translation: no side effects, shallow checks only (the
// nested fields of a referenced document are not traversed).
func (r *Resolver) Resolve(ctx context.Context, d models.Document) (*store.DocumentRecord, error) {
	rec := &store.DocumentRecord{
		ID:           d.ID,
		Title:        d.Title,
		Body:         d.Body,
		AuthorIDs:    []int{},
		ReferenceIDs: []int{},
	}
	for _, a := range d.Authors {
		if _, err := r.store.FindAuthor(ctx, a.ID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, models.NewAuthorNotFound(a.ID)
			}
			return nil, err
		}
		rec.AuthorIDs = append(rec.AuthorIDs, a.ID)
	}
	for _, ref := range d.References {
		if _, err := r.store.FindDocument(ctx, ref.ID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, models.NewReferenceNotFound(ref.ID)
			}
			return nil, err
		}
		rec.ReferenceIDs = append(rec.ReferenceIDs, ref.ID)
	}
	return rec, nil
}
