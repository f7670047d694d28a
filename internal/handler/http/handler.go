// Package httphandler exposes the image host use cases over HTTP.
package httphandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/imghost/internal/application/appcore"
	"github.com/lllypuk/imghost/internal/domain/errs"
	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
)

// Pagination defaults shared by the list endpoints.
const (
	DefaultListCount = 25
)

var errInvalidPagination = errors.New("count and page must be integers")

// parsePagination reads count and page from the query. Missing values fall
// back to DefaultListCount and the first page; range checks are left to the
// use cases.
func parsePagination(c echo.Context) (int, int, error) {
	count := DefaultListCount
	page := 0

	if s := c.QueryParam("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, errInvalidPagination
		}
		count = n
	}

	if s := c.QueryParam("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, errInvalidPagination
		}
		page = n
	}

	return count, page, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, appcore.ErrValidationFailed) || errors.Is(err, errs.ErrInvalidInput)
}

func respondValidationError(c echo.Context, err error) error {
	return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
