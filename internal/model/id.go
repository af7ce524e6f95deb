package model

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidIDError reports an id that could not be read from text.
type InvalidIDError struct {
	Input string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid todo id %q: want a positive integer", e.Input)
}

// ParseID reads a todo id from user or markup text. Only plain positive
// decimal integers are accepted; signs, spaces inside, and floats are not.
func ParseID(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || raw[0] == '+' || raw[0] == '-' {
		return 0, &InvalidIDError{Input: s}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &InvalidIDError{Input: s}
	}
	return id, nil
}

// FormatID is the inverse of ParseID.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
