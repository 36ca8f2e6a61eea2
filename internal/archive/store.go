// Package archive persists finished reflection documents and their analysis
// results as objects, best effort. An archive failure is logged and never
// surfaced into session state.
package archive

import (
	"context"
	"errors"
)

// Store defines operations for persisting session artifacts.
type Store interface {
	Put(ctx context.Context, sessionID, name string, content []byte) error
	Get(ctx context.Context, sessionID, name string) ([]byte, error)
	List(ctx context.Context, sessionID string) ([]string, error)
}

var ErrNotFound = errors.New("archive: object not found")
