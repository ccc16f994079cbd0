package repository

import "errors"

// ErrDuplicate reports a unique-constraint violation on insert.
var ErrDuplicate = errors.New("record already exists")
