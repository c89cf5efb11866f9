package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate indicates an insert violated a uniqueness constraint. The like
// toggle relies on receiving this for the losing side of a concurrent insert.
var ErrDuplicate = errors.New("repository: duplicate key")
