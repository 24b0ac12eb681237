package engine

import "errors"

// ErrClosed is returned by any operation on an Engine after Close has been
// called.
var ErrClosed = errors.New("engine: closed")
