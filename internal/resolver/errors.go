package resolver

import "fmt"

// ResolutionUnavailableError reports that an exact resolution request was
// not satisfiable for an entity that passed every other constraint. This
// is a configuration error: resolution of the whole URL stops.
type ResolutionUnavailableError struct {
	Resolution Resolution
	Entity     string
}

func (e *ResolutionUnavailableError) Error() string {
	return fmt.Sprintf("resolution %s is not available for %s", e.Resolution, e.Entity)
}
