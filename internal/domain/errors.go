package domain

import "github.com/pkg/errors"

// ErrNotFound is returned by repositories when no row matches the lookup.
var ErrNotFound = errors.New("record not found")
