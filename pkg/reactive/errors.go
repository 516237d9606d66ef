package reactive

import "github.com/vango-dev/reactor/internal/errors"

// Sentinel errors. They match any reported error carrying the same code:
//
//	if errors.Is(err, reactive.ErrCycle) { ... }
var (
	ErrWriteToDerived = errors.New(errors.CodeWriteToDerived)
	ErrDisposed       = errors.New(errors.CodeDisposed)
	ErrCycle          = errors.New(errors.CodeCycle)
	ErrListenerFailed = errors.New(errors.CodeListenerFailed)
	ErrComputeFailed  = errors.New(errors.CodeComputeFailed)
	ErrFlushLimit     = errors.New(errors.CodeFlushLimit)
	ErrEffectFailed   = errors.New(errors.CodeEffectFailed)
)
