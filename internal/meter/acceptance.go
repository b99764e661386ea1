package meter

// Acceptance counts accepted Monte Carlo trials.
type Acceptance struct {
	Trials   int64 `json:"trials"`
	Accepted int64 `json:"accepted"`
}

func (a *Acceptance) Record(accepted bool) {
	a.Trials++
	if accepted {
		a.Accepted++
	}
}

// Ratio is the accepted fraction, zero before any trial.
func (a Acceptance) Ratio() float64 {
	if a.Trials == 0 {
		return 0
	}
	return float64(a.Accepted) / float64(a.Trials)
}
