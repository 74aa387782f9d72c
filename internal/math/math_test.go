package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {

	type test struct {
		input  float64
		output string
	}

	tests := map[string]test{
		"0": {
			input:  0,
			output: "0.00",
		},
		"-1": {
			input:  -1,
			output: "-1.00",
		},
		"5": {
			input:  1.5555,
			output: "1.56",
		},
		"4": {
			input:  1.4444,
			output: "1.44",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := Format(tt.input)
			assert.Equal(t, tt.output, s)
		})
	}

}

func TestLinspace(t *testing.T) {

	type test struct {
		from, to float64
		n        int
		output   []float64
	}

	tests := map[string]test{
		"empty": {
			from:   0,
			to:     1,
			n:      0,
			output: []float64{},
		},
		"single": {
			from:   2,
			to:     5,
			n:      1,
			output: []float64{2},
		},
		"unit": {
			from:   0,
			to:     1,
			n:      5,
			output: []float64{0, 0.25, 0.5, 0.75, 1},
		},
		"negative": {
			from:   -1,
			to:     1,
			n:      3,
			output: []float64{-1, 0, 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			xx := Linspace(tt.from, tt.to, tt.n)
			assert.InDeltaSlice(t, tt.output, xx, 1e-12)
		})
	}
}

func TestSine(t *testing.T) {
	xx := Linspace(0, 2*math.Pi, 50)
	yy := Sine(2, 3, 0.5, xx)
	for i, x := range xx {
		assert.InDelta(t, 2*math.Sin(3*x+0.5), yy[i], 1e-12)
	}
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, -1, ArgMax(nil))
	assert.Equal(t, 2, ArgMax([]float64{0.1, 0.2, 0.7}))
	assert.Equal(t, 0, ArgMax([]float64{0.5, 0.5}))
}

func TestMeanAbsDiff(t *testing.T) {
	assert.Equal(t, 0.0, MeanAbsDiff([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, 1.0, MeanAbsDiff([]float64{1, 2}, []float64{2, 1}))
	assert.True(t, math.IsNaN(MeanAbsDiff([]float64{1}, []float64{1, 2})))
}

func TestFFT(t *testing.T) {

	type test struct {
		frequency float64
		samples   int
	}

	tests := map[string]test{
		"1": {
			frequency: 1,
			samples:   64,
		},
		"3": {
			frequency: 3,
			samples:   64,
		},
		"5": {
			frequency: 5,
			samples:   128,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// full periods without the closing point, so that the signal is periodic in the window
			step := 2 * math.Pi / float64(tt.samples)
			xx := make([]float64, tt.samples)
			for i := range xx {
				xx[i] = step * float64(i)
			}
			spectrum := FFT(Sine(1, tt.frequency, 0, xx))
			d, ok := spectrum.Dominant()
			assert.True(t, ok)
			assert.Equal(t, int(tt.frequency), d.Frequency)
			assert.InDelta(t, tt.frequency, spectrum.AngularFrequency(step), 1e-9)
		})
	}

}
