package mcmove

import "go.uber.org/zap"

// Adapter tunes the step size of a move toward a target acceptance ratio.
type Adapter struct {
	Target   float64
	Interval int64
	MinStep  float64

	move     Move
	log      *zap.Logger
	trials   int64
	accepted int64
}

// NewAdapter adjusts m every interval trials toward acceptance target.
func NewAdapter(m Move, target float64, interval int64, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{Target: target, Interval: interval, MinStep: 1e-6, move: m, log: log}
}

// Record counts one trial and adjusts the step at the end of an interval.
func (a *Adapter) Record(accepted bool) {
	a.trials++
	if accepted {
		a.accepted++
	}
	if a.Interval <= 0 || a.trials < a.Interval {
		return
	}
	ratio := float64(a.accepted) / float64(a.trials)
	step := a.move.StepSize()
	if ratio > a.Target {
		step *= 1.05
	} else {
		step *= 0.95
	}
	step = min(max(step, a.MinStep), a.move.MaxStepSize())
	a.move.SetStepSize(step)
	a.log.Debug("step size adjusted",
		zap.String("move", a.move.Name()),
		zap.Float64("acceptance", ratio),
		zap.Float64("step", step))
	a.trials, a.accepted = 0, 0
}
