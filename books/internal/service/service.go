package service

import (
	"context"
	"time"

	"github.com/Astemirdum/books-service/books/internal/model"
	"github.com/Astemirdum/books-service/books/internal/queue"
	booksRepo "github.com/Astemirdum/books-service/books/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	repo   booksRepo.Repository
	ids    booksRepo.IDGenerator
	events queue.Publisher
}

func NewService(repo booksRepo.Repository, ids booksRepo.IDGenerator, events queue.Publisher, log *zap.Logger) *Service {
	return &Service{
		log:    log.Named("service"),
		repo:   repo,
		ids:    ids,
		events: events,
	}
}

func (s *Service) ListBooks(ctx context.Context) (model.Books, error) {
	return s.repo.All(ctx)
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, in model.BookCreate) (model.Book, error) {
	book := in.Book(s.ids.NextID())
	if err := s.repo.Set(ctx, book); err != nil {
		return model.Book{}, errors.Wrap(err, "repo.Set")
	}
	s.publish(ctx, model.EventCreated, book.ID, &book)
	return book, nil
}

func (s *Service) UpdateBook(ctx context.Context, id string, in model.BookUpdate) (model.Book, error) {
	book, err := s.repo.Update(ctx, id, in.Apply)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, model.EventUpdated, book.ID, &book)
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, model.EventDeleted, id, nil)
	return nil
}

// publish never fails the caller: the store is already mutated at this point.
func (s *Service) publish(ctx context.Context, typ model.EventType, id string, book *model.Book) {
	event := model.BookEvent{
		Type:       typ,
		BookID:     id,
		Book:       book,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("events.Publish", zap.String("type", string(typ)), zap.String("book_id", id), zap.Error(err))
	}
}
