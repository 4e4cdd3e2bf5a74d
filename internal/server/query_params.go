package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = time.DateOnly

var errInvalidTime = errors.New("invalid_time")

// parseTimeBound accepts RFC 3339 or a bare date. A bare date used as an
// upper bound covers the whole day.
func parseTimeBound(value string, upper bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	day, err := time.ParseInLocation(dateOnlyLayout, value, time.UTC)
	if err != nil {
		return nil, errInvalidTime
	}
	if upper {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}

// contentDisposition is "attachment" when ?download is truthy.
func contentDisposition(c *gin.Context) string {
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		return "attachment"
	}
	return "inline"
}
