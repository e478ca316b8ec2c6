package repo

import "errors"

var (
	// ErrNotFound signals a missing record
	ErrNotFound = errors.New("repo: not found")
	// ErrDuplicate signals a uniqueness violation (e.g. a second pending
	// invitation for the same email within a team)
	ErrDuplicate = errors.New("repo: duplicate record")
)
