package fitter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Status tells why the solver stopped.
type Status int

const (
	StatusUnknown Status = iota
	CostTolerance
	StepTolerance
	GradientTolerance
	MaxIterationsReached
)

func (s Status) String() string {
	switch s {
	case CostTolerance:
		return "cost_tolerance"
	case StepTolerance:
		return "step_tolerance"
	case GradientTolerance:
		return "gradient_tolerance"
	case MaxIterationsReached:
		return "max_iterations_reached"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of String. Unknown names give StatusUnknown.
func ParseStatus(name string) Status {
	for s := CostTolerance; s <= MaxIterationsReached; s++ {
		if s.String() == name {
			return s
		}
	}
	return StatusUnknown
}

// Converged is false only when the solver ran out of iterations.
func (s Status) Converged() bool {
	return s == CostTolerance || s == StepTolerance || s == GradientTolerance
}

// Settings control the Levenberg-Marquardt iteration. Zero fields fall back
// to DefaultSettings.
type Settings struct {
	MaxIterations     int
	CostTolerance     float64
	StepTolerance     float64
	GradientTolerance float64
	// InitialDamping scales the largest diagonal entry of JᵀJ to give the
	// first damping factor.
	InitialDamping float64
}

func DefaultSettings() *Settings {
	return &Settings{
		MaxIterations:     200,
		CostTolerance:     1e-8,
		StepTolerance:     1e-8,
		GradientTolerance: 1e-8,
		InitialDamping:    1e-3,
	}
}

func (s *Settings) withDefaults() *Settings {
	d := DefaultSettings()
	if s == nil {
		return d
	}
	out := *s
	if out.MaxIterations <= 0 {
		out.MaxIterations = d.MaxIterations
	}
	if out.CostTolerance <= 0 {
		out.CostTolerance = d.CostTolerance
	}
	if out.StepTolerance <= 0 {
		out.StepTolerance = d.StepTolerance
	}
	if out.GradientTolerance <= 0 {
		out.GradientTolerance = d.GradientTolerance
	}
	if out.InitialDamping <= 0 {
		out.InitialDamping = d.InitialDamping
	}
	return &out
}

// residualFunc writes the residuals at x into dst.
type residualFunc func(dst, x []float64)

type solution struct {
	x           []float64
	residuals   []float64
	cost        float64
	status      Status
	iterations  int
	evaluations int
}

// levenbergMarquardt minimises 0.5·‖r(x)‖² starting from x0, where r has m
// components. Each iteration tries one damped Gauss-Newton step; the damping
// follows Nielsen's update rule.
func levenbergMarquardt(f residualFunc, m int, x0 []float64, settings *Settings) (*solution, error) {
	s := settings.withDefaults()
	n := len(x0)
	if n == 0 || m == 0 {
		return nil, errors.New("empty least squares problem")
	}

	sol := &solution{status: MaxIterationsReached}
	eval := func(dst, x []float64) {
		sol.evaluations++
		f(dst, x)
	}

	x := append([]float64(nil), x0...)
	r := make([]float64, m)
	eval(r, x)
	cost := 0.5 * floats.Dot(r, r)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return nil, fmt.Errorf("residuals are not finite at the initial guess")
	}

	jac := mat.NewDense(m, n, nil)
	jacSettings := &fd.JacobianSettings{Formula: fd.Central}
	var (
		jtj      mat.SymDense
		gradient mat.VecDense
		damping  float64
		nu       = 2.0
		needJac  = true
		xTrial   = make([]float64, n)
		rTrial   = make([]float64, m)
	)

	for iter := 0; iter < s.MaxIterations; iter++ {
		sol.iterations = iter + 1

		if needJac {
			fd.Jacobian(jac, eval, x, jacSettings)
			jtj.SymOuterK(1, jac.T())
			gradient.MulVec(jac.T(), mat.NewVecDense(m, r))
			if mat.Norm(&gradient, math.Inf(1)) <= s.GradientTolerance {
				sol.status = GradientTolerance
				break
			}
			if damping == 0 {
				maxDiag := 0.0
				for i := 0; i < n; i++ {
					maxDiag = math.Max(maxDiag, jtj.At(i, i))
				}
				damping = s.InitialDamping * maxDiag
				if damping == 0 {
					damping = s.InitialDamping
				}
			}
			needJac = false
		}

		step, ok, err := dampedStep(&jtj, &gradient, damping)
		if err != nil {
			return nil, err
		}
		if !ok {
			damping *= nu
			nu *= 2
			continue
		}

		if floats.Norm(step, 2) <= s.StepTolerance*(floats.Norm(x, 2)+s.StepTolerance) {
			sol.status = StepTolerance
			break
		}

		floats.AddTo(xTrial, x, step)
		eval(rTrial, xTrial)
		trialCost := 0.5 * floats.Dot(rTrial, rTrial)

		// Predicted reduction of the local linear model: ½·hᵀ(λh − g).
		predicted := 0.0
		for i, h := range step {
			predicted += h * (damping*h - gradient.AtVec(i))
		}
		predicted *= 0.5
		if predicted <= 0 {
			sol.status = CostTolerance
			break
		}
		actual := cost - trialCost
		rho := actual / predicted

		if rho > 0 && !math.IsNaN(trialCost) {
			copy(x, xTrial)
			copy(r, rTrial)
			previous := cost
			cost = trialCost
			damping *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2
			needJac = true
			if actual <= s.CostTolerance*previous {
				sol.status = CostTolerance
				break
			}
			continue
		}
		damping *= nu
		nu *= 2
	}

	sol.x = x
	sol.residuals = r
	sol.cost = cost
	return sol, nil
}

// dampedStep solves (JᵀJ + λI)·h = −g. ok is false when the damped matrix is
// not positive definite and more damping is needed.
func dampedStep(jtj *mat.SymDense, gradient *mat.VecDense, damping float64) ([]float64, bool, error) {
	n := jtj.SymmetricDim()
	damped := mat.NewSymDense(n, nil)
	damped.CopySym(jtj)
	for i := 0; i < n; i++ {
		damped.SetSym(i, i, damped.At(i, i)+damping)
	}

	var chol mat.Cholesky
	if !chol.Factorize(damped) {
		return nil, false, nil
	}
	var h mat.VecDense
	if err := chol.SolveVecTo(&h, gradient); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false, fmt.Errorf("solving damped normal equations: %w", err)
		}
	}
	step := make([]float64, n)
	for i := range step {
		step[i] = -h.AtVec(i)
	}
	return step, true, nil
}
