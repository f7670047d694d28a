package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// RequestObserver records handled requests.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics returns a middleware reporting every request to observer, labelled
// by route template so ids in paths do not create new series.
func Metrics(observer RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			observer.ObserveRequest(c.Request().Method, route, responseStatus(c, err), time.Since(start))
			return err
		}
	}
}
