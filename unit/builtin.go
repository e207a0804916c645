package unit

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler rescales every variable to zero mean and unit variance.
// Variables with zero spread are only centred.
type StandardScaler struct {
	mean []float64
	std  []float64
}

func (s *StandardScaler) Kind() Kind { return SeriesToSeries }

func (s *StandardScaler) Fit(x *mat.Dense) error {
	_, c := x.Dims()
	s.mean = make([]float64, c)
	s.std = make([]float64, c)
	for j := 0; j < c; j++ {
		m, sd := stat.PopMeanStdDev(mat.Col(nil, j, x), nil)
		if sd == 0 {
			sd = 1
		}
		s.mean[j], s.std[j] = m, sd
	}
	return nil
}

func (s *StandardScaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	if s.mean == nil {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != len(s.mean) {
		return nil, fmt.Errorf("%w: fitted on %d variables, got %d", ErrShape, len(s.mean), c)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.mean[j]) / s.std[j]
	}, x)
	return out, nil
}

func (s *StandardScaler) Clone() Unit { return &StandardScaler{} }

// Differencer replaces each value by its difference to the value Lag steps
// earlier, shortening every instance by Lag time points.
type Differencer struct {
	Lag int

	fitted bool
}

func (d *Differencer) Kind() Kind { return SeriesToSeries }

func (d *Differencer) Fit(*mat.Dense) error {
	if d.Lag < 1 {
		return fmt.Errorf("%w: lag %d", ErrShape, d.Lag)
	}
	d.fitted = true
	return nil
}

func (d *Differencer) Transform(x *mat.Dense) (*mat.Dense, error) {
	if !d.fitted {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if r <= d.Lag {
		return nil, fmt.Errorf("%w: %d time points for lag %d", ErrShape, r, d.Lag)
	}
	out := mat.NewDense(r-d.Lag, c, nil)
	for i := d.Lag; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i-d.Lag, j, x.At(i, j)-x.At(i-d.Lag, j))
		}
	}
	return out, nil
}

func (d *Differencer) Clone() Unit { return &Differencer{Lag: d.Lag} }

// Mean collapses an instance into the mean of each variable.
type Mean struct {
	fitted bool
}

func (m *Mean) Kind() Kind { return SeriesToPrimitives }

func (m *Mean) Fit(*mat.Dense) error {
	m.fitted = true
	return nil
}

func (m *Mean) Transform(x *mat.Dense) (*mat.Dense, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	_, c := x.Dims()
	out := mat.NewDense(1, c, nil)
	for j := 0; j < c; j++ {
		out.Set(0, j, stat.Mean(mat.Col(nil, j, x), nil))
	}
	return out, nil
}

func (m *Mean) Clone() Unit { return &Mean{} }

// Summary collapses an instance into mean, standard deviation, minimum and
// maximum of each variable, laid out variable by variable.
type Summary struct {
	fitted bool
}

// SummaryWidth is the number of values Summary produces per variable.
const SummaryWidth = 4

func (s *Summary) Kind() Kind { return SeriesToPrimitives }

func (s *Summary) Fit(*mat.Dense) error {
	s.fitted = true
	return nil
}

func (s *Summary) Transform(x *mat.Dense) (*mat.Dense, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	_, c := x.Dims()
	out := mat.NewDense(1, SummaryWidth*c, nil)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		m, sd := stat.PopMeanStdDev(col, nil)
		base := SummaryWidth * j
		out.Set(0, base, m)
		out.Set(0, base+1, sd)
		out.Set(0, base+2, floats.Min(col))
		out.Set(0, base+3, floats.Max(col))
	}
	return out, nil
}

func (s *Summary) Clone() Unit { return &Summary{} }
