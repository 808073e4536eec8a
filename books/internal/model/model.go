package model

import (
	"time"
)

type Book struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Pages    int    `json:"pages"`
	Language string `json:"language"`
}

// Books is the whole store keyed by book id.
type Books map[string]Book

// BookCreate fields are pointers so that a missing key can be told apart from a zero value.
type BookCreate struct {
	Title    *string `json:"title" validate:"required"`
	Author   *string `json:"author" validate:"required"`
	Year     *int    `json:"year" validate:"required"`
	Pages    *int    `json:"pages" validate:"required"`
	Language *string `json:"language" validate:"required"`
}

func (in BookCreate) Book(id string) Book {
	return Book{
		ID:       id,
		Title:    deref(in.Title),
		Author:   deref(in.Author),
		Year:     deref(in.Year),
		Pages:    deref(in.Pages),
		Language: deref(in.Language),
	}
}

// BookUpdate is a partial update: nil fields are left untouched.
type BookUpdate struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Year     *int    `json:"year"`
	Pages    *int    `json:"pages"`
	Language *string `json:"language"`
}

func (in BookUpdate) Apply(b Book) Book {
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.Year != nil {
		b.Year = *in.Year
	}
	if in.Pages != nil {
		b.Pages = *in.Pages
	}
	if in.Language != nil {
		b.Language = *in.Language
	}
	return b
}

// Response always carries every key; unset optional fields are sent as null.
type Response struct {
	Message      *string     `json:"message"`
	HasError     bool        `json:"has_error"`
	ErrorMessage *string     `json:"error_message"`
	Data         interface{} `json:"data"`
}

func NewResponse(message string, data interface{}) Response {
	return Response{Message: &message, Data: data}
}

type ErrorResponse struct {
	Detail       string `json:"detail"`
	HasError     bool   `json:"has_error"`
	ErrorMessage string `json:"error_message"`
}

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

type BookEvent struct {
	Type       EventType `json:"type"`
	BookID     string    `json:"book_id"`
	Book       *Book     `json:"book,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
