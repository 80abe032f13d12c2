package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

// mapError maps domain errors to Forge HTTP errors. Business-rule
// rejections, missing referents included, surface as 409 conflicts;
// anything else propagates as an internal error.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if steward.IsConflict(err) {
		return forge.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}

// parseUserCode parses the :usercode path parameter.
func parseUserCode(raw string) (int64, error) {
	code, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("invalid user code %q", raw)
	}
	return code, nil
}

// parseBirthDate accepts a plain date or a full RFC 3339 timestamp.
func parseBirthDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}
