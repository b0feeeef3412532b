package http

import (
	"errors"
	"net/http"

	"storeops-borrow/internal/domain/borrow"

	"github.com/labstack/echo/v4"
)

// writeError maps workflow errors to responses. state_conflict stays a 400 but carries its
// own kind so clients can tell "bad request" from "the workflow has moved on".
func writeError(c echo.Context, err error) error {
	switch kind := borrow.KindOf(err); kind {
	case borrow.KindInvalidArgument, borrow.KindStateConflict:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: string(kind)})
	case borrow.KindNotFound:
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: string(kind)})
	}
	if errors.Is(err, borrow.ErrConcurrencyConflict) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "borrow is being updated, retry", Kind: "concurrency_conflict"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Kind:    string(borrow.KindInvalidArgument),
		Details: ToFieldErrors(err),
	})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Kind: string(borrow.KindInvalidArgument)})
}
