package errors

// Registered error codes.
const (
	CodeWriteToDerived = "R001"
	CodeDisposed       = "R002"
	CodeCycle          = "R003"
	CodeListenerFailed = "R004"
	CodeComputeFailed  = "R005"
	CodeFlushLimit     = "R006"
	CodeEffectFailed   = "R007"

	CodeDuplicateKey    = "V001"
	CodeComponentFailed = "V002"

	CodeHostFailed = "H001"

	CodeConfigNotFound = "C001"
	CodeConfigInvalid  = "C002"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (R001-R099)
	// ============================================

	CodeWriteToDerived: {
		Category: CategoryReactive,
		Severity: SeverityWarning,
		Message:  "Write to derived cell",
		Detail:   "Computed cells are read-only. The write was ignored and the cached value is unchanged.",
	},
	CodeDisposed: {
		Category: CategoryReactive,
		Severity: SeverityWarning,
		Message:  "Read of disposed cell",
		Detail:   "The cell was destroyed when its owning component unmounted. The zero value was returned.",
	},
	CodeCycle: {
		Category: CategoryReactive,
		Severity: SeverityError,
		Message:  "Cyclic dependency detected",
		Detail:   "A computed cell read itself, directly or through other cells, while recomputing. The cell keeps its last value and stops recomputing.",
	},
	CodeListenerFailed: {
		Category: CategoryReactive,
		Severity: SeverityError,
		Message:  "Listener failed",
		Detail:   "A subscriber panicked during notification. Remaining subscribers were still notified.",
	},
	CodeComputeFailed: {
		Category: CategoryReactive,
		Severity: SeverityError,
		Message:  "Computation failed",
		Detail:   "A computed cell's function panicked. The cell keeps its last value.",
	},
	CodeFlushLimit: {
		Category: CategoryReactive,
		Severity: SeverityError,
		Message:  "Flush pass limit exceeded",
		Detail:   "Writes kept scheduling new notification passes. Pending notifications were dropped.",
	},
	CodeEffectFailed: {
		Category: CategoryReactive,
		Severity: SeverityError,
		Message:  "Effect failed",
		Detail:   "An effect or its cleanup panicked. The effect stays registered.",
	},

	// ============================================
	// Reconcile Errors (V001-V099)
	// ============================================

	CodeDuplicateKey: {
		Category: CategoryReconcile,
		Severity: SeverityError,
		Message:  "Duplicate sibling key",
		Detail:   "Two sibling elements share a key. The first occurrence was rendered and later ones were skipped.",
	},
	CodeComponentFailed: {
		Category: CategoryReconcile,
		Severity: SeverityError,
		Message:  "Component render failed",
		Detail:   "A component panicked while rendering. Its previous output, if any, was kept.",
	},

	// ============================================
	// Host Errors (H001-H099)
	// ============================================

	CodeHostFailed: {
		Category: CategoryHost,
		Severity: SeverityError,
		Message:  "Host operation failed",
		Detail:   "The host adapter rejected an operation.",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  "Configuration file not found",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  "Invalid configuration",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
