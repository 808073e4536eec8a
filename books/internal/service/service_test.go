package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Astemirdum/books-service/books/internal/errs"
	"github.com/Astemirdum/books-service/books/internal/model"
	"github.com/Astemirdum/books-service/books/internal/repository"
	"github.com/Astemirdum/books-service/books/internal/service"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.BookEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func ptr[T any](v T) *T { return &v }

func newBookCreate(title string) model.BookCreate {
	return model.BookCreate{
		Title:    ptr(title),
		Author:   ptr("John Doe"),
		Year:     ptr(2023),
		Pages:    ptr(500),
		Language: ptr("English"),
	}
}

func newService(pub *recordingPublisher) *service.Service {
	log := zap.NewNop()
	return service.NewService(repository.NewRepository(log), repository.NewSequentialID(), pub, log)
}

func TestService_ListBooks_Empty(t *testing.T) {
	svc := newService(&recordingPublisher{})
	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Empty(t, books)
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	created, err := svc.CreateBook(ctx, newBookCreate("Johny bravo"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Johny bravo", created.Title)

	got, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	require.Equal(t, model.Books{created.ID: created}, books)
	require.Equal(t, []model.EventType{model.EventCreated}, pub.types())
}

func TestService_CreateBook_FreshIDAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(&recordingPublisher{})

	first, err := svc.CreateBook(ctx, newBookCreate("first"))
	require.NoError(t, err)
	second, err := svc.CreateBook(ctx, newBookCreate("second"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBook(ctx, first.ID))

	third, err := svc.CreateBook(ctx, newBookCreate("third"))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, third.ID)
	require.NotEqual(t, second.ID, third.ID)

	got, err := svc.GetBook(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "second", got.Title)
}

func TestService_UpdateBook(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	created, err := svc.CreateBook(ctx, model.BookCreate{
		Title: ptr("Original Title"), Author: ptr("Original Author"), Year: ptr(2000), Pages: ptr(100), Language: ptr("English"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, created.ID, model.BookUpdate{Title: ptr("Updated Title"), Author: ptr("Updated Author")})
	require.NoError(t, err)
	require.Equal(t, model.Book{
		ID: created.ID, Title: "Updated Title", Author: "Updated Author", Year: 2000, Pages: 100, Language: "English",
	}, updated)

	got, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)
	require.Equal(t, []model.EventType{model.EventCreated, model.EventUpdated}, pub.types())
}

// deletingRepository removes the book right before every update reaches the store.
type deletingRepository struct {
	repository.Repository
}

func (r deletingRepository) Update(ctx context.Context, id string, fn func(model.Book) model.Book) (model.Book, error) {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return model.Book{}, err
	}
	return r.Repository.Update(ctx, id, fn)
}

func TestService_UpdateBook_RacingDelete(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()
	base := repository.NewRepository(log)
	pub := &recordingPublisher{}
	svc := service.NewService(deletingRepository{Repository: base}, repository.NewSequentialID(), pub, log)

	created, err := svc.CreateBook(ctx, newBookCreate("A"))
	require.NoError(t, err)

	_, err = svc.UpdateBook(ctx, created.ID, model.BookUpdate{Title: ptr("B")})
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.GetBook(ctx, created.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, []model.EventType{model.EventCreated}, pub.types())
}

func TestService_UpdateBook_ConcurrentPartialUpdates(t *testing.T) {
	ctx := context.Background()
	svc := newService(&recordingPublisher{})

	created, err := svc.CreateBook(ctx, newBookCreate("A"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.UpdateBook(ctx, created.ID, model.BookUpdate{Title: ptr("B")})
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.UpdateBook(ctx, created.ID, model.BookUpdate{Pages: ptr(999)})
		}()
	}
	wg.Wait()

	got, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "B", got.Title)
	require.Equal(t, 999, got.Pages)
}

func TestService_NotFound(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)
	const id = "6a2f41a3-c54c-fce8-32d2-0324e1c32e22"

	_, err := svc.GetBook(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.UpdateBook(ctx, id, model.BookUpdate{Title: ptr("x")})
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.ErrorIs(t, svc.DeleteBook(ctx, id), errs.ErrNotFound)
	require.Empty(t, pub.types())
}

func TestService_DeleteBook(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	created, err := svc.CreateBook(ctx, newBookCreate("Book to be deleted"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBook(ctx, created.ID))

	_, err = svc.GetBook(ctx, created.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, []model.EventType{model.EventCreated, model.EventDeleted}, pub.types())
}

func TestService_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	svc := newService(&recordingPublisher{err: errors.New("broker down")})

	created, err := svc.CreateBook(ctx, newBookCreate("A"))
	require.NoError(t, err)
	_, err = svc.UpdateBook(ctx, created.ID, model.BookUpdate{Pages: ptr(11)})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBook(ctx, created.ID))
}
