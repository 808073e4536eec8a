package handler

import (
	"fmt"
	"net/http"

	"github.com/Astemirdum/books-service/books/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// errorHandler renders every error as model.ErrorResponse.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		h.log.Error("unhandled error", zap.Error(err))
		he = echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	msg, ok := he.Message.(string)
	if !ok {
		msg = fmt.Sprint(he.Message)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, model.ErrorResponse{
			Detail:       msg,
			HasError:     true,
			ErrorMessage: msg,
		})
	}
	if err != nil {
		h.log.Error("errorHandler", zap.Error(err))
	}
}
