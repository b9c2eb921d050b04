package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSharedSequence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.SaveAuthor(ctx, &AuthorRecord{FirstName: "Mary", LastName: "Muller"})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)

	d, err := s.SaveDocument(ctx, &DocumentRecord{Title: "T1", Body: "body text", AuthorIDs: []int{a.ID}})
	require.NoError(t, err)
	// authors and documents draw from the same sequence
	assert.Equal(t, 2, d.ID)
}

func TestMemoryStoreSaveDoesNotAliasCaller(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := &DocumentRecord{Title: "T1", Body: "body text", AuthorIDs: []int{1, 1, 3, 2}}
	saved, err := s.SaveDocument(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, saved.AuthorIDs, "edges should be deduplicated and sorted")
	assert.Equal(t, 0, in.ID, "input record must stay untouched")

	saved.Title = "mutated"
	saved.AuthorIDs[0] = 99
	got, err := s.FindDocument(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Title)
	assert.Equal(t, []int{1, 2, 3}, got.AuthorIDs)
}

func TestMemoryStoreFindMissing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.FindAuthor(ctx, 42)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = s.FindDocument(ctx, 42)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, s.DeleteAuthor(ctx, 42), ErrRecordNotFound)
	assert.ErrorIs(t, s.DeleteDocument(ctx, 42), ErrRecordNotFound)
}

func TestMemoryStoreDeleteAuthorCascade(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a1, _ := s.SaveAuthor(ctx, &AuthorRecord{FirstName: "Mary", LastName: "Muller"})
	a2, _ := s.SaveAuthor(ctx, &AuthorRecord{FirstName: "John", LastName: "Doe"})
	d, _ := s.SaveDocument(ctx, &DocumentRecord{Title: "T1", Body: "body text", AuthorIDs: []int{a1.ID, a2.ID}})

	require.NoError(t, s.DeleteAuthor(ctx, a1.ID))

	exists, err := s.AuthorExists(ctx, a1.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := s.FindDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{a2.ID}, got.AuthorIDs, "deleted author must be removed from the document's author set")
}

func TestMemoryStoreDeleteDocumentCascade(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, _ := s.SaveAuthor(ctx, &AuthorRecord{FirstName: "Mary", LastName: "Muller"})
	d1, _ := s.SaveDocument(ctx, &DocumentRecord{Title: "T1", Body: "body text", AuthorIDs: []int{a.ID}})
	d2, _ := s.SaveDocument(ctx, &DocumentRecord{Title: "T2", Body: "body text", AuthorIDs: []int{a.ID}, ReferenceIDs: []int{d1.ID}})

	require.NoError(t, s.DeleteDocument(ctx, d1.ID))

	got, err := s.FindDocument(ctx, d2.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ReferenceIDs, "deleted document must be removed from other reference sets")
}

func TestMemoryStoreCyclicReferences(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, _ := s.SaveAuthor(ctx, &AuthorRecord{FirstName: "Mary", LastName: "Muller"})
	d1, _ := s.SaveDocument(ctx, &DocumentRecord{Title: "T1", Body: "body text", AuthorIDs: []int{a.ID}})
	d2, _ := s.SaveDocument(ctx, &DocumentRecord{Title: "T2", Body: "body text", AuthorIDs: []int{a.ID}, ReferenceIDs: []int{d1.ID}})

	// close the cycle: d1 -> d2 -> d1
	d1.ReferenceIDs = []int{d2.ID}
	_, err := s.SaveDocument(ctx, d1)
	require.NoError(t, err)

	all, err := s.FindAllDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.SaveAuthor(ctx, &AuthorRecord{FirstName: "Mary", LastName: "Muller"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.FindAllAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, all, n, "every concurrent save must get a distinct identifier")
}
