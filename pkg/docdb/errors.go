package docdb

import "errors"

// Sentinel errors for adapters whose SDK has no native error for the
// condition. Adapters with native errors (Firestore) return those instead.
var (
	ErrNotFound           = errors.New("document not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnsupported        = errors.New("operation not supported by this backend")
	ErrForeignRef         = errors.New("document reference belongs to a different client")
	ErrClosed             = errors.New("client is closed")
)
