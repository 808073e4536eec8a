package handler

import (
	"fmt"
	"net/http"

	"github.com/Astemirdum/books-service/books/internal/errs"
	"github.com/Astemirdum/books-service/books/internal/model"
	_ "github.com/Astemirdum/books-service/books/swagger"
	md "github.com/Astemirdum/books-service/pkg/middleware"
	"github.com/Astemirdum/books-service/pkg/serializer"
	"github.com/Astemirdum/books-service/pkg/validate"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	msgHome        = "Hello from the books API"
	msgBookAdded   = "Book added successfully"
	msgBookUpdated = "Book updated successfully"
	msgBookDeleted = "Book deleted successfully"
	msgNotFound    = "book not found."
)

type Handler struct {
	booksSvc BookService
	apiRPS   rate.Limit
	log      *zap.Logger
}

type Option func(h *Handler)

func WithAPIRPS(rps float64) Option {
	return func(h *Handler) {
		if rps > 0 {
			h.apiRPS = rate.Limit(rps)
		}
	}
}

func New(booksSvc BookService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		booksSvc: booksSvc,
		apiRPS:   100,
		log:      log.Named("handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	const baseRPS = 10

	e.JSONSerializer = serializer.JSONSerializer{}
	e.Validator = validate.NewCustomValidator()
	e.HTTPErrorHandler = h.errorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/", h.Home)
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/books",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(h.apiRPS),
	)
	api.GET("", h.ListBooks)
	api.GET("/:id", h.GetBook)
	api.POST("", h.CreateBook)
	api.PUT("/:id", h.UpdateBook)
	api.DELETE("/:id", h.DeleteBook)

	return e
}

func (h *Handler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": msgHome})
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.booksSvc.ListBooks(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.booksSvc.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var in model.BookCreate
	if err := c.Bind(&in); err != nil {
		return bindError(err)
	}
	if err := c.Validate(in); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	book, err := h.booksSvc.CreateBook(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.NewResponse(msgBookAdded, book))
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	var in model.BookUpdate
	if err := c.Bind(&in); err != nil {
		return bindError(err)
	}
	book, err := h.booksSvc.UpdateBook(c.Request().Context(), id, in)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, bookNotFound(id))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.NewResponse(msgBookUpdated, book))
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	if err := h.booksSvc.DeleteBook(c.Request().Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, bookNotFound(id))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.NewResponse(msgBookDeleted, nil))
}

func bookNotFound(id string) string {
	return fmt.Sprintf("Book with id: %s not found", id)
}

// uuidParam returns the :id path param in canonical UUID form.
func uuidParam(c echo.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("id is not a valid uuid: %v", err))
	}
	return id.String(), nil
}

// bindError turns binder failures into 422, except for an unsupported content type.
func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusUnsupportedMediaType {
			return he
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, he.Message).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
}
