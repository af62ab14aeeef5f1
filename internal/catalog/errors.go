package catalog

import "errors"

// ErrCatalogUnavailable is returned when no catalog has ever been loaded and
// every fetch attempt in the current call failed.
var ErrCatalogUnavailable = errors.New("plan catalog unavailable")
