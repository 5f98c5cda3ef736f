// Package seasonal holds the periodic gas usage model and the integrals
// computed over it. Days are real numbers counted from the start of a
// year; the model repeats every Calendar.DaysPerYear() days.
package seasonal

import (
	"fmt"
	"math"
)

// Harmonics is the number of sine/cosine pairs in the model.
// Four are enough for one winter peak plus corrections; the higher terms
// may cause a small bump in summer.
const Harmonics = 4

// ParameterCount is the length of Coefficients.Vector().
const ParameterCount = 2*Harmonics + 1

// DayFunc maps a day to a usage density (share of yearly usage per day).
type DayFunc func(day float64) float64

// Coefficients are the fitted amplitudes of one model instance.
type Coefficients struct {
	Sin    [Harmonics]float64 `json:"sin"`
	Cos    [Harmonics]float64 `json:"cos"`
	Offset float64            `json:"offset"`
}

// Vector flattens the coefficients as s1..s4, c1..c4, offset.
func (c Coefficients) Vector() []float64 {
	v := make([]float64, 0, ParameterCount)
	v = append(v, c.Sin[:]...)
	v = append(v, c.Cos[:]...)
	return append(v, c.Offset)
}

// CoefficientsFromVector is the inverse of Coefficients.Vector.
func CoefficientsFromVector(v []float64) (Coefficients, error) {
	var c Coefficients
	if len(v) != ParameterCount {
		return c, fmt.Errorf("expected %d coefficients, got %d", ParameterCount, len(v))
	}
	copy(c.Sin[:], v[:Harmonics])
	copy(c.Cos[:], v[Harmonics:2*Harmonics])
	c.Offset = v[2*Harmonics]
	return c, nil
}

// Model binds coefficients to the calendar whose year length is the period.
type Model struct {
	Coefficients Coefficients
	Calendar     Calendar
}

func NewModel(coefficients Coefficients, calendar Calendar) Model {
	return Model{Coefficients: coefficients, Calendar: calendar}
}

// Evaluate returns the usage density at day. No range reduction is applied,
// so precision degrades slowly for very large days.
func (m Model) Evaluate(day float64) float64 {
	period := float64(m.Calendar.DaysPerYear())
	value := m.Coefficients.Offset
	for k := 1; k <= Harmonics; k++ {
		angle := 2 * math.Pi * float64(k) * day / period
		value += m.Coefficients.Sin[k-1]*math.Sin(angle) + m.Coefficients.Cos[k-1]*math.Cos(angle)
	}
	return value
}

// Func exposes Evaluate as a DayFunc for the integrators.
func (m Model) Func() DayFunc {
	return m.Evaluate
}
