package api

import (
	"fmt"
	"strconv"
	"strings"
)

// parseProjectID reads a project id path segment.
func parseProjectID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing project id", ErrBadRequest)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid project id %q", ErrBadRequest, raw)
	}
	return id, nil
}
