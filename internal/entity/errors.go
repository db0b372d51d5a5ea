package entity

import "errors"

// ErrNotFound is returned (possibly wrapped) by repositories when a row is missing.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists signals a unique constraint violation.
var ErrAlreadyExists = errors.New("already exists")
