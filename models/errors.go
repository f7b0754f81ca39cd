package models

import "errors"

var (
	// ErrPageNotFound is returned by page stores when no record exists for a URL.
	ErrPageNotFound = errors.New("page not found")
	// ErrPageExists is returned by page stores when creating a record that already exists.
	ErrPageExists = errors.New("page already exists")
)
