package borrowck

// Options tunes a verification run.
type Options struct {
	// AllowPartialMoves enables per-field move tracking for composites.
	// When disabled, moving any field moves the whole binding.
	AllowPartialMoves bool
	// StrictBorrowScoping pins borrow lifetimes to their lexical scope.
	// It is the only implemented mode; false is accepted and behaves the same.
	StrictBorrowScoping bool
	// AbortOnUnknownBinding stops the pass at the first UnknownBinding.
	AbortOnUnknownBinding bool
	// MaxViolations caps the report (0 = unlimited).
	MaxViolations int
}

// DefaultOptions returns the recommended configuration.
func DefaultOptions() Options {
	return Options{
		AllowPartialMoves:   true,
		StrictBorrowScoping: true,
	}
}
