// Package author implements CRUD over authors with a read-through cache and
// cascading cleanup of the document-author relation on delete.
package author

import (
	"context"
	"errors"

	"github.com/patrick-ksn/dms/internal/cache"
	"github.com/patrick-ksn/dms/internal/models"
	"github.com/patrick-ksn/dms/internal/store"
	"github.com/patrick-ksn/dms/pkg/logger"
	"github.com/patrick-ksn/dms/pkg/metrics"
)

type Service struct {
	store     store.Store
	authors   cache.Cache
	documents cache.Cache
}

// NewService wires the author service. It holds both caches because deleting
// an author changes the rendered author list of documents, so that delete
// must evict the documents cache as well.
func NewService(st store.Store, authors, documents cache.Cache) *Service {
	return &Service{store: st, authors: authors, documents: documents}
}

// Create persists a new author. The incoming identifier is discarded; the
// store assigns a fresh one.
func (s *Service) Create(ctx context.Context, a models.Author) (*models.Author, error) {
	a.ID = 0
	saved, err := s.store.SaveAuthor(ctx, toRecord(a))
	if err != nil {
		return nil, err
	}
	if err := cache.Invalidate(ctx, s.authors); err != nil {
		return nil, err
	}
	return toModel(saved), nil
}

// Update persists changes to an existing author.
func (s *Service) Update(ctx context.Context, a models.Author) (*models.Author, error) {
	if err := s.requireExists(ctx, a.ID); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveAuthor(ctx, toRecord(a))
	if err != nil {
		return nil, err
	}
	if err := cache.Invalidate(ctx, s.authors); err != nil {
		return nil, err
	}
	return toModel(saved), nil
}

// Delete removes the author and strips it from every document's author set.
// Both caches are evicted: documents render their authors, so a cached
// document read could otherwise still show the deleted author.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.requireExists(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteAuthor(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return models.NewAuthorNotFound(id)
		}
		return err
	}
	if err := cache.Invalidate(ctx, s.authors); err != nil {
		return err
	}
	return cache.Invalidate(ctx, s.documents)
}

// FindByID returns one author through the cache.
func (s *Service) FindByID(ctx context.Context, id int) (*models.Author, error) {
	var out models.Author
	if s.cacheGet(ctx, cache.KeyID(id), &out) {
		return &out, nil
	}
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}
	rec, err := s.store.FindAuthor(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, models.NewAuthorNotFound(id)
		}
		return nil, err
	}
	out = *toModel(rec)
	s.cacheSet(ctx, cache.KeyID(id), out)
	return &out, nil
}

// FindAll returns every author through the cache. An empty result is valid.
func (s *Service) FindAll(ctx context.Context) ([]models.Author, error) {
	var out []models.Author
	if s.cacheGet(ctx, cache.KeyAll, &out) {
		return out, nil
	}
	recs, err := s.store.FindAllAuthors(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]models.Author, 0, len(recs))
	for i := range recs {
		out = append(out, *toModel(&recs[i]))
	}
	s.cacheSet(ctx, cache.KeyAll, out)
	return out, nil
}

func (s *Service) requireExists(ctx context.Context, id int) error {
	exists, err := s.store.AuthorExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewAuthorNotFound(id)
	}
	return nil
}

// cacheGet reports whether key was served from the cache. Cache transport
// failures degrade to a miss; the store stays the source of truth.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.authors.Get(ctx, key, dest)
	if err != nil {
		logger.Warnf("authors cache get %s: %v", key, err)
		return false
	}
	if hit {
		metrics.CacheHits.WithLabelValues(s.authors.Name()).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(s.authors.Name()).Inc()
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.authors.Set(ctx, key, value); err != nil {
		logger.Warnf("authors cache set %s: %v", key, err)
	}
}

func toRecord(a models.Author) *store.AuthorRecord {
	return &store.AuthorRecord{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName}
}

func toModel(rec *store.AuthorRecord) *models.Author {
	return &models.Author{ID: rec.ID, FirstName: rec.FirstName, LastName: rec.LastName}
}
