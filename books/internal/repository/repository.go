package repository

import (
	"context"
	"sync"

	"github.com/Astemirdum/books-service/books/internal/errs"
	"github.com/Astemirdum/books-service/books/internal/model"
	"go.uber.org/zap"
)

type Repository interface {
	Get(ctx context.Context, id string) (model.Book, error)
	Set(ctx context.Context, book model.Book) error
	Update(ctx context.Context, id string, fn func(model.Book) model.Book) (model.Book, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) (model.Books, error)
}

// repository keeps books in process memory. Values are stored and returned by copy.
type repository struct {
	mu    sync.RWMutex
	books model.Books
	log   *zap.Logger
}

func NewRepository(log *zap.Logger) *repository {
	return &repository{
		books: make(model.Books),
		log:   log.Named("repo"),
	}
}

func (r *repository) Get(_ context.Context, id string) (model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return book, nil
}

func (r *repository) Set(_ context.Context, book model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.books[book.ID] = book
	r.log.Debug("Set", zap.String("id", book.ID), zap.Int("size", len(r.books)))
	return nil
}

// Update runs fn on the stored book under the write lock, so concurrent mutations of the same
// id never interleave. The id is kept whatever fn returns.
func (r *repository) Update(_ context.Context, id string, fn func(model.Book) model.Book) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	book = fn(book)
	book.ID = id
	r.books[id] = book
	r.log.Debug("Update", zap.String("id", id))
	return book, nil
}

func (r *repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.books, id)
	r.log.Debug("Delete", zap.String("id", id), zap.Int("size", len(r.books)))
	return nil
}

func (r *repository) All(_ context.Context) (model.Books, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make(model.Books, len(r.books))
	for id, book := range r.books {
		books[id] = book
	}
	return books, nil
}
