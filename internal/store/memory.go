package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used for unit tests and for running the
// service without a MongoDB instance. One lock guards every operation, which
// makes each call its own atomic unit of work.
//
// Identifiers come from a single sequence shared by authors and documents,
// matching the backing database of the production store.
type MemoryStore struct {
	mu        sync.RWMutex
	authors   map[int]AuthorRecord
	documents map[int]DocumentRecord
	nextID    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		authors:   make(map[int]AuthorRecord),
		documents: make(map[int]DocumentRecord),
		nextID:    1,
	}
}

func (m *MemoryStore) AuthorExists(_ context.Context, id int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.authors[id]
	return ok, nil
}

func (m *MemoryStore) FindAuthor(_ context.Context, id int) (*AuthorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.authors[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &rec, nil
}

func (m *MemoryStore) FindAllAuthors(_ context.Context) ([]AuthorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]AuthorRecord, 0, len(m.authors))
	for _, rec := range m.authors {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveAuthor(_ context.Context, rec *AuthorRecord) (*AuthorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *rec
	if saved.ID == 0 {
		saved.ID = m.nextID
		m.nextID++
	} else if saved.ID >= m.nextID {
		m.nextID = saved.ID + 1
	}
	m.authors[saved.ID] = saved
	return &saved, nil
}

func (m *MemoryStore) DeleteAuthor(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authors[id]; !ok {
		return ErrRecordNotFound
	}
	// strip the author from every document's author set before dropping the row
	for docID, doc := range m.documents {
		doc.AuthorIDs = removeID(doc.AuthorIDs, id)
		m.documents[docID] = doc
	}
	delete(m.authors, id)
	return nil
}

func (m *MemoryStore) DocumentExists(_ context.Context, id int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.documents[id]
	return ok, nil
}

func (m *MemoryStore) FindDocument(_ context.Context, id int) (*DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.documents[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := rec
	out.AuthorIDs = append([]int(nil), rec.AuthorIDs...)
	out.ReferenceIDs = append([]int(nil), rec.ReferenceIDs...)
	return &out, nil
}

func (m *MemoryStore) FindAllDocuments(_ context.Context) ([]DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DocumentRecord, 0, len(m.documents))
	for _, rec := range m.documents {
		cp := rec
		cp.AuthorIDs = append([]int(nil), rec.AuthorIDs...)
		cp.ReferenceIDs = append([]int(nil), rec.ReferenceIDs...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveDocument(_ context.Context, rec *DocumentRecord) (*DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *rec
	if saved.ID == 0 {
		saved.ID = m.nextID
		m.nextID++
	} else if saved.ID >= m.nextID {
		m.nextID = saved.ID + 1
	}
	saved.AuthorIDs = dedupeIDs(rec.AuthorIDs)
	saved.ReferenceIDs = dedupeIDs(rec.ReferenceIDs)
	m.documents[saved.ID] = saved

	out := saved
	out.AuthorIDs = append([]int(nil), saved.AuthorIDs...)
	out.ReferenceIDs = append([]int(nil), saved.ReferenceIDs...)
	return &out, nil
}

func (m *MemoryStore) DeleteDocument(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return ErrRecordNotFound
	}
	// strip the document from every reference set before dropping the row
	for docID, doc := range m.documents {
		if docID == id {
			continue
		}
		doc.ReferenceIDs = removeID(doc.ReferenceIDs, id)
		m.documents[docID] = doc
	}
	delete(m.documents, id)
	return nil
}

// dedupeIDs returns a sorted copy of ids with duplicates removed.
func dedupeIDs(ids []int) []int {
	if len(ids) == 0 {
		return []int{}
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
