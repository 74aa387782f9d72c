package math

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// FFT computes the one sided amplitude spectrum of a real series.
func FFT(xx []float64) *Spectrum {
	cc := fft.FFTReal(xx)

	ss := newSpectrum(len(xx))
	for i, n := range cc {
		if i > len(cc)/2 {
			continue
		}
		ss.add(RNum{
			Amplitude: cmplx.Abs(n),
			Frequency: i,
		})
	}

	sort.Sort(sort.Reverse(spectrums(ss.Values)))

	return ss
}

// Spectrum is a collection of spectra, sorted by decreasing amplitude.
type Spectrum struct {
	Values    []RNum
	Amplitude float64
	size      int
}

func newSpectrum(size int) *Spectrum {
	return &Spectrum{
		Values: make([]RNum, 0),
		size:   size,
	}
}

func (s *Spectrum) add(r RNum) {
	s.Values = append(s.Values, r)
	s.Amplitude += r.Amplitude
}

// Dominant returns the strongest non-constant frequency bin.
func (s *Spectrum) Dominant() (RNum, bool) {
	for _, v := range s.Values {
		if v.Frequency > 0 {
			return v, true
		}
	}
	return RNum{}, false
}

// AngularFrequency converts the dominant bin of a series sampled with the given step
// into an angular frequency, e.g. the f in sin(f*x).
func (s *Spectrum) AngularFrequency(step float64) float64 {
	d, ok := s.Dominant()
	if !ok || step <= 0 || s.size == 0 {
		return 0
	}
	return 2 * math.Pi * float64(d.Frequency) / (float64(s.size) * step)
}

// RNum is a single bin of the spectrum.
type RNum struct {
	Amplitude float64
	Frequency int
}

type spectrums []RNum

func (s spectrums) Len() int { return len(s) }
func (s spectrums) Less(i, j int) bool {
	if s[i].Amplitude == s[j].Amplitude {
		// higher bins sort first, so that after reversing the lowest bin wins
		return s[i].Frequency > s[j].Frequency
	}
	return s[i].Amplitude < s[j].Amplitude
}
func (s spectrums) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
