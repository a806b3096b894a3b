package simulation

import "fmt"

// ForecastDivergenceError reports that the historical throughput cannot
// complete the requested backlog within the trial cap. The forecast is
// undetermined; the run continues without it.
type ForecastDivergenceError struct {
	Target int
	Cap    int
}

func (e *ForecastDivergenceError) Error() string {
	return fmt.Sprintf("forecast for %d items did not converge within %d simulated days", e.Target, e.Cap)
}
