package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/googlebooks"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/openlibrary"
)

type fakePrimary struct {
	byISBN map[string]*openlibrary.Record
	search map[string]*openlibrary.Record
	works  map[string]*openlibrary.Work
	calls  []string
}

func (f *fakePrimary) LookupByISBN(_ context.Context, isbn string) *openlibrary.Record {
	f.calls = append(f.calls, "isbn:"+isbn)
	return f.byISBN[isbn]
}

func (f *fakePrimary) SearchByTitleAuthor(_ context.Context, title, author string) *openlibrary.Record {
	f.calls = append(f.calls, "search:"+title)
	return f.search[title]
}

func (f *fakePrimary) LookupWork(_ context.Context, workKey string) *openlibrary.Work {
	f.calls = append(f.calls, "work:"+workKey)
	return f.works[workKey]
}

type fakeSecondary struct {
	volume *googlebooks.Volume
	calls  []string
}

func (f *fakeSecondary) Search(_ context.Context, isbn, title, author string) *googlebooks.Volume {
	f.calls = append(f.calls, googlebooks.BuildQuery(isbn, title, author))
	return f.volume
}

type fakeStore struct {
	books     map[int64]catalog.Book
	updates   int
	failOn    map[int64]bool
	needsList []catalog.Book
}

func newFakeStore(books ...catalog.Book) *fakeStore {
	s := &fakeStore{books: map[int64]catalog.Book{}, failOn: map[int64]bool{}}
	for _, b := range books {
		s.books[b.ID] = b
	}
	return s
}

func (s *fakeStore) GetBook(_ context.Context, id int64) (*catalog.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, datastore.ErrNotFound)
	}
	return &b, nil
}

func (s *fakeStore) UpdateBook(_ context.Context, book *catalog.Book) error {
	if s.failOn[book.ID] {
		return errors.New("disk full")
	}
	s.updates++
	s.books[book.ID] = *book
	return nil
}

func (s *fakeStore) ListNeedingEnrichment(context.Context) ([]catalog.Book, error) {
	return s.needsList, nil
}

func (s *fakeStore) ListBooks(context.Context, datastore.ListOptions) ([]catalog.Book, error) {
	books := make([]catalog.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	return books, nil
}
