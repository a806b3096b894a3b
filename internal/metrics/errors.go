package metrics

import "fmt"

// InsufficientDataError reports an analysis view without enough qualifying
// data points. The view renders as absent; the run continues.
type InsufficientDataError struct {
	View   string
	Need   int
	Got    int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.View, e.Reason)
	}
	if e.Need > 0 {
		return fmt.Sprintf("%s: need at least %d qualifying data points, have %d", e.View, e.Need, e.Got)
	}
	return fmt.Sprintf("%s: no qualifying data points", e.View)
}
