package cluster

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/virial/internal/box"
)

const (
	// MaxPoints bounds the point count; the recursion holds four arrays of
	// 2^n values.
	MaxPoints = 20

	// DefaultTolerance is the relative cancellation below which a value is
	// recomputed in extended precision.
	DefaultTolerance = 1e-12

	// DefaultPrecisionLimit is the largest precision, in decimal digits, tried
	// before a value is declared zero.
	DefaultPrecisionLimit = 300

	precisionStep = 20
)

var (
	ErrPointCount  = errors.New("cluster: invalid point count")
	ErrTolerance   = errors.New("cluster: tolerance must be in [0, 1)")
	ErrTemperature = errors.New("cluster: temperature must be positive and finite")
	ErrSpecies     = errors.New("cluster: invalid species table")
	ErrOrder       = errors.New("cluster: derivative order must not be negative")
	ErrNoClusters  = errors.New("cluster: no clusters to combine")
)

// Cluster is a memoized integrand of a box configuration.
type Cluster interface {
	box.Weight
	// Points is the number of points the cluster expects in a box.
	Points() int
	// Copy returns an independent cluster with the same functions and
	// settings and empty caches.
	Copy() Cluster
	// SetTemperature changes the temperature and forgets cached values.
	SetTemperature(t float64)
	// Stats reports the evaluation counters accumulated so far.
	Stats() Counters
}

// Vector is a cluster with several outputs per configuration.
type Vector interface {
	Cluster
	// Values returns all outputs; Values(b)[0] == Value(b). The slice is
	// owned by the cluster and valid until its next evaluation.
	Values(b *box.Box) []float64
	// Len is the number of outputs.
	Len() int
}

// Mode selects what a multibody cluster reports.
type Mode int

const (
	// Total is the integrand with pair and non-additive energies together.
	Total Mode = iota
	// Excess is Total minus the pairwise-only integrand.
	Excess
)

func (m Mode) String() string {
	if m == Excess {
		return "excess"
	}
	return "total"
}

// Counters are per-instance evaluation statistics.
type Counters struct {
	Computed      int64 `json:"computed"`
	CacheHits     int64 `json:"cache_hits"`
	Reverts       int64 `json:"reverts"`
	ShortCircuits int64 `json:"short_circuits"`
	Fallbacks     int64 `json:"fallbacks"`
	Escalations   int64 `json:"escalations"`
	Zeroed        int64 `json:"zeroed"`
}

// Plus returns the field-wise sum.
func (c Counters) Plus(o Counters) Counters {
	return Counters{
		Computed:      c.Computed + o.Computed,
		CacheHits:     c.CacheHits + o.CacheHits,
		Reverts:       c.Reverts + o.Reverts,
		ShortCircuits: c.ShortCircuits + o.ShortCircuits,
		Fallbacks:     c.Fallbacks + o.Fallbacks,
		Escalations:   c.Escalations + o.Escalations,
		Zeroed:        c.Zeroed + o.Zeroed,
	}
}

// Coefficient is (1-n)/n!, the factor between the biconnected graph sum and
// the virial integrand.
func Coefficient(n int) float64 {
	c := float64(1 - n)
	for i := 2; i <= n; i++ {
		c /= float64(i)
	}
	return c
}

type settings struct {
	tol   float64
	limit int
	temp  float64
	mode  Mode
	log   *zap.Logger
}

// Option configures a cluster.
type Option func(*settings)

// WithTolerance sets the extended precision trigger; zero disables it.
func WithTolerance(tol float64) Option {
	return func(s *settings) { s.tol = tol }
}

// WithPrecisionLimit sets the largest precision in decimal digits.
func WithPrecisionLimit(digits int) Option {
	return func(s *settings) { s.limit = digits }
}

// WithTemperature sets the initial temperature (default 1).
func WithTemperature(t float64) Option {
	return func(s *settings) { s.temp = t }
}

// WithMode selects the multibody output. Pairwise clusters ignore it.
func WithMode(m Mode) Option {
	return func(s *settings) { s.mode = m }
}

// WithLogger sets the logger used for precision fallback diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.log = l }
}

func newSettings(opts []Option) (settings, error) {
	s := settings{tol: DefaultTolerance, limit: DefaultPrecisionLimit, temp: 1, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if !(s.tol >= 0 && s.tol < 1) {
		return s, fmt.Errorf("%w: %g", ErrTolerance, s.tol)
	}
	if err := checkTemperature(s.temp); err != nil {
		return s, err
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s, nil
}

func checkTemperature(t float64) error {
	if !(t > 0) || math.IsInf(t, 1) {
		return fmt.Errorf("%w: %g", ErrTemperature, t)
	}
	return nil
}

func checkPoints(n int) error {
	if n < 2 || n > MaxPoints {
		return fmt.Errorf("%w: %d not in [2, %d]", ErrPointCount, n, MaxPoints)
	}
	return nil
}
