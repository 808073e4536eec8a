package handler

import (
	"context"

	"github.com/Astemirdum/books-service/books/internal/model"
	"github.com/Astemirdum/books-service/books/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	ListBooks(ctx context.Context) (model.Books, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, in model.BookCreate) (model.Book, error)
	UpdateBook(ctx context.Context, id string, in model.BookUpdate) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

var _ BookService = (*service.Service)(nil)
