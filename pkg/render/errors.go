package render

import "github.com/vango-dev/reactor/internal/errors"

// Sentinel errors matching reported reconcile and host failures.
var (
	ErrDuplicateKey    = errors.New(errors.CodeDuplicateKey)
	ErrComponentFailed = errors.New(errors.CodeComponentFailed)
	ErrHostFailed      = errors.New(errors.CodeHostFailed)
)
