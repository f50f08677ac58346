package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user id stored in context by
// the JWT middleware. JWT numeric claims decode as float64, so several
// shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("no user id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
