package governor

import "errors"

var (
	// ErrRateLimited is returned when a client exceeds its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrEmptyQuery is returned for blank query text.
	ErrEmptyQuery = errors.New("query text is required")
)
