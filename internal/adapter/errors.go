package adapter

import (
	"errors"
)

var (
	// ErrNotFound is returned when an id is invalid, deleted, or inaccessible.
	ErrNotFound = errors.New("remote item not found")

	// ErrTransport is returned for network, auth, and server failures during a remote call.
	ErrTransport = errors.New("remote transport error")

	// ErrUnsupportedType is returned when a remote item has no downloadable byte content.
	ErrUnsupportedType = errors.New("remote item has no downloadable content")
)
