// Package document implements CRUD over the self-referential document graph:
// reference resolution before writes, cascading reference cleanup on delete,
// and cached reads with one-level expansion of referenced documents.
package document

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
	resolver  *Resolver
	documents cache.Cache
}

func NewService(st store.Store, documents cache.Cache) *Service {
	return &Service{store: st, resolver: NewResolver(st), documents: documents}
}

// Create persists a new document. The incoming identifier is discarded, the
// author set must not be empty, and every edge identifier must resolve.
func (s *Service) Create(ctx context.Context, d models.Document) (*models.Document, error) {
	d.ID = 0
	if len(d.Authors) == 0 {
		return nil, models.NewDocumentWithoutAuthor()
	}
	rec, err := s.resolver.Resolve(ctx, d)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.SaveDocument(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := cache.Invalidate(ctx, s.documents); err != nil {
		return nil, err
	}
	return s.expand(ctx, saved)
}

// Update persists changes to an existing document. Unlike Create it does not
// require a non-empty author set: an update may clear the authors.
func (s *Service) Update(ctx context.Context, d models.Document) (*models.Document, error) {
	if err := s.requireExists(ctx, d.ID); err != nil {
		return nil, err
	}
	rec, err := s.resolver.Resolve(ctx, d)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.SaveDocument(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := cache.Invalidate(ctx, s.documents); err != nil {
		return nil, err
	}
	return s.expand(ctx, saved)
}

// Delete removes the document and strips it from every other document's
// reference set.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.requireExists(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return models.NewDocumentNotFound(id)
		}
		return err
	}
	return cache.Invalidate(ctx, s.documents)
}

// FindByID returns one document through the cache, with authors resolved and
// references expanded one level.
func (s *Service) FindByID(ctx context.Context, id int) (*models.Document, error) {
	var out models.Document
	if s.cacheGet(ctx, cache.KeyID(id), &out) {
		return &out, nil
	}
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}
	rec, err := s.store.FindDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, models.NewDocumentNotFound(id)
		}
		return nil, err
	}
	expanded, err := s.expand(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cache.KeyID(id), expanded)
	return expanded, nil
}

// GetAll returns every document through the cache, each fully expanded.
// An empty result is valid.
func (s *Service) GetAll(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	if s.cacheGet(ctx, cache.KeyAll, &out) {
		return out, nil
	}
	recs, err := s.store.FindAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]models.Document, 0, len(recs))
	for i := range recs {
		expanded, err := s.expand(ctx, &recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *expanded)
	}
	s.cacheSet(ctx, cache.KeyAll, out)
	return out, nil
}

// expand is the two-phase read over the identifier arena. Phase one builds
// the document with its direct author edges resolved; phase two loads one hop
// of referenced documents with only their authors populated and their own
// reference sets left empty. Recursion never goes deeper, so reference cycles
// terminate by construction.
func (s *Service) expand(ctx context.Context, rec *store.DocumentRecord) (*models.Document, error) {
	out := &models.Document{
		ID:         rec.ID,
		Title:      rec.Title,
		Body:       rec.Body,
		Authors:    []models.Author{},
		References: []models.Document{},
	}
	authors, err := s.loadAuthors(ctx, rec.AuthorIDs)
	if err != nil {
		return nil, err
	}
	out.Authors = authors

	for _, refID := range rec.ReferenceIDs {
		refRec, err := s.store.FindDocument(ctx, refID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				// edge cleanup lost a race with this read; the row is gone
				continue
			}
			return nil, err
		}
		refAuthors, err := s.loadAuthors(ctx, refRec.AuthorIDs)
		if err != nil {
			return nil, err
		}
		out.References = append(out.References, models.Document{
			ID:         refRec.ID,
			Title:      refRec.Title,
			Body:       refRec.Body,
			Authors:    refAuthors,
			References: []models.Document{},
		})
	}
	return out, nil
}

func (s *Service) loadAuthors(ctx context.Context, ids []int) ([]models.Author, error) {
	out := make([]models.Author, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.FindAuthor(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, models.Author{ID: rec.ID, FirstName: rec.FirstName, LastName: rec.LastName})
	}
	return out, nil
}

func (s *Service) requireExists(ctx context.Context, id int) error {
	exists, err := s.store.DocumentExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewDocumentNotFound(id)
	}
	return nil
}

// cacheGet reports whether key was served from the cache. Cache transport
// failures degrade to a miss; the store stays the source of truth.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.documents.Get(ctx, key, dest)
	if err != nil {
		logger.Warnf("documents cache get %s: %v", key, err)
		return false
	}
	if hit {
		metrics.CacheHits.WithLabelValues(s.documents.Name()).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(s.documents.Name()).Inc()
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.documents.Set(ctx, key, value); err != nil {
		logger.Warnf("documents cache set %s: %v", key, err)
	}
}
