package math

// Linspace returns n evenly spaced values over [from, to], both ends included.
func Linspace(from, to float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	xx := make([]float64, n)
	if n == 1 {
		xx[0] = from
		return xx
	}
	step := (to - from) / float64(n-1)
	for i := 0; i < n; i++ {
		xx[i] = from + step*float64(i)
	}
	// avoid accumulating the rounding error on the last point
	xx[n-1] = to
	return xx
}

// Sine samples amplitude * sin(frequency * x + shift) over the given x values.
func Sine(amplitude, frequency, shift float64, xx []float64) []float64 {
	yy := make([]float64, len(xx))
	for i, x := range xx {
		yy[i] = amplitude * SineEvolve(x*frequency+shift)
	}
	return yy
}
