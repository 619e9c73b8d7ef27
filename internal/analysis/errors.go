package analysis

import "errors"

var (
	ErrProcessNotFound = errors.New("process not found")
)
