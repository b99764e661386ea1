// Package meter collects Monte Carlo samples of cluster values.
package meter

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoBlocks indicates an estimate requested before a block completed.
var ErrNoBlocks = errors.New("meter: no complete blocks")

// Ratio accumulates several channels of per-configuration values in blocks.
// In Mayer sampling channel 0 is the reference cluster over the sampling
// weight and the remaining channels are the target outputs over the same
// weight.
type Ratio struct {
	blockSize int64
	sum       []float64
	count     int64
	blocks    [][]float64
	samples   int64
}

// NewRatio builds a meter with the given channel count and block size.
func NewRatio(channels int, blockSize int64) *Ratio {
	if blockSize < 1 {
		blockSize = 1
	}
	return &Ratio{
		blockSize: blockSize,
		sum:       make([]float64, channels),
		blocks:    make([][]float64, channels),
	}
}

// Channels is the number of values per sample.
func (r *Ratio) Channels() int { return len(r.sum) }

// Add records one sample; values must have one entry per channel.
func (r *Ratio) Add(values []float64) {
	floats.Add(r.sum, values)
	r.count++
	r.samples++
	if r.count < r.blockSize {
		return
	}
	for ch, s := range r.sum {
		r.blocks[ch] = append(r.blocks[ch], s/float64(r.count))
	}
	for i := range r.sum {
		r.sum[i] = 0
	}
	r.count = 0
}

// Samples is the total number of samples added.
func (r *Ratio) Samples() int64 { return r.samples }

// BlockCount is the number of complete blocks.
func (r *Ratio) BlockCount() int { return len(r.blocks[0]) }

// Block returns the averages of block i, one per channel.
func (r *Ratio) Block(i int) []float64 {
	out := make([]float64, len(r.blocks))
	for ch := range r.blocks {
		out[ch] = r.blocks[ch][i]
	}
	return out
}

// Mean and StdErr are over complete blocks.
func (r *Ratio) Mean(ch int) float64 {
	if len(r.blocks[ch]) == 0 {
		return math.NaN()
	}
	return stat.Mean(r.blocks[ch], nil)
}

func (r *Ratio) StdErr(ch int) float64 {
	nb := len(r.blocks[ch])
	if nb < 2 {
		return math.NaN()
	}
	return stat.StdDev(r.blocks[ch], nil) / math.Sqrt(float64(nb))
}

// Estimate is a ratio of channel means with its standard error and the
// correlation between the two channels' block averages.
type Estimate struct {
	Value       float64 `json:"value"`
	Error       float64 `json:"error"`
	Correlation float64 `json:"correlation"`
}

// RatioOf estimates mean(num)/mean(den), propagating block errors with
// their covariance.
func (r *Ratio) RatioOf(num, den int) (Estimate, error) {
	nb := len(r.blocks[num])
	if nb == 0 {
		return Estimate{}, ErrNoBlocks
	}
	mn, md := r.Mean(num), r.Mean(den)
	ratio := mn / md
	if nb < 2 {
		return Estimate{Value: ratio, Error: math.NaN(), Correlation: math.NaN()}, nil
	}
	vn := stat.Variance(r.blocks[num], nil)
	vd := stat.Variance(r.blocks[den], nil)
	cov := stat.Covariance(r.blocks[num], r.blocks[den], nil)
	rel := vn/(mn*mn) + vd/(md*md) - 2*cov/(mn*md)
	return Estimate{
		Value:       ratio,
		Error:       math.Abs(ratio) * math.Sqrt(math.Max(rel, 0)/float64(nb)),
		Correlation: cov / math.Sqrt(vn*vd),
	}, nil
}

// Reset forgets every sample.
func (r *Ratio) Reset() {
	for i := range r.sum {
		r.sum[i] = 0
		r.blocks[i] = r.blocks[i][:0]
	}
	r.count, r.samples = 0, 0
}

// Merge pools the complete blocks of meters with the same channels.
func Merge(rs ...*Ratio) *Ratio {
	if len(rs) == 0 {
		return NewRatio(0, 1)
	}
	out := NewRatio(rs[0].Channels(), rs[0].blockSize)
	for _, r := range rs {
		for ch := range out.blocks {
			out.blocks[ch] = append(out.blocks[ch], r.blocks[ch]...)
		}
		out.samples += r.samples
	}
	return out
}
