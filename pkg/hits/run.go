package hits

import (
	"context"

	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/utils"
)

const (
	DefaultEpsilon       = 1e-9
	DefaultMaxIterations = 100000
	// Consecutive converged rounds required before stopping; a single
	// near-zero gap is not trusted
	DefaultStableRounds = 4
)

// State of a run; Running is only observed while Run is iterating
type State int32

const (
	Running        State = iota
	StateConverged       // Totals stable for StableRounds checks in a row
	StateExhausted       // Iteration cap reached before converging
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case StateConverged:
		return "converged"
	case StateExhausted:
		return "exhausted"
	}
	return "undefined"
}

type Options struct {
	EpsilonAuthority float64
	EpsilonHub       float64
	MaxIterations    int
	StableRounds     int
}

func DefaultOptions() Options {
	return Options{
		EpsilonAuthority: DefaultEpsilon,
		EpsilonHub:       DefaultEpsilon,
		MaxIterations:    DefaultMaxIterations,
		StableRounds:     DefaultStableRounds,
	}
}

// Zero values are replaced with the defaults
func (o Options) withDefaults() Options {
	if o.EpsilonAuthority <= 0 {
		o.EpsilonAuthority = DefaultEpsilon
	}
	if o.EpsilonHub <= 0 {
		o.EpsilonHub = DefaultEpsilon
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.StableRounds <= 0 {
		o.StableRounds = DefaultStableRounds
	}
	return o
}

type Input struct {
	Graph    *graph.Graph
	Universe []string // Every known page, seeded to 1
	Root     []string // Pages scored for authority
	Base     []string // Pages scored for hub
}

type Result struct {
	Authority  *Table
	Hub        *Table
	State      State
	Iterations int // Iteration steps computed, at most MaxIterations
	Degenerate int // Steps in which a table had a zero norm
}

// Run iterates until the score totals are stable for StableRounds
// consecutive checks or MaxIterations steps were computed. Exhausting the
// budget is not an error: the latest scores are returned with the
// StateExhausted state. ctx is checked between iterations.
//
// The first step counts toward MaxIterations and convergence is checked
// before the cap, so at most MaxIterations steps are computed and a run
// converging on its last allowed step reports StateConverged. A loop that
// tests the cap first and counts from zero would compute up to two more
// steps
func Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	g := in.Graph
	if g == nil {
		g = graph.New(nil, nil)
	}

	authority, hub := Init(in.Universe)
	step := Iterate(authority, hub, in.Root, in.Base, g)
	result := &Result{Iterations: 1}
	result.record(step)

	stable := streak{want: opts.StableRounds}
	for {
		authorityGap, hubGap := Gaps(authority, hub, step.Authority, step.Hub)
		utils.DebugLog("hits", "Convergence check",
			"iteration", result.Iterations, "authority_gap", authorityGap, "hub_gap", hubGap)
		if stable.observe(authorityGap < opts.EpsilonAuthority && hubGap < opts.EpsilonHub) {
			result.State = StateConverged
			break
		}
		if result.Iterations >= opts.MaxIterations {
			utils.WarnLog("hits", "Exceeded iteration limit", "iterations", result.Iterations)
			result.State = StateExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		authority.Merge(step.Authority)
		hub.Merge(step.Hub)
		step = Iterate(authority, hub, in.Root, in.Base, g)
		result.Iterations++
		result.record(step)
	}

	result.Authority = step.Authority
	result.Hub = step.Hub
	utils.NodeLog("hits", "Computation finished",
		"state", result.State, "iterations", result.Iterations,
		"root", len(in.Root), "base", len(in.Base))
	return result, nil
}

// streak counts consecutive converged checks; a check that did not converge
// starts over
type streak struct {
	count int
	want  int
}

// observe records a check and reports whether the last want checks all
// converged
func (s *streak) observe(converged bool) bool {
	if !converged {
		s.count = 0
		return false
	}
	s.count++
	return s.count >= s.want
}

// Degenerate steps are logged once per run
func (r *Result) record(step Step) {
	if !step.AuthorityDegenerate && !step.HubDegenerate {
		return
	}
	if r.Degenerate == 0 {
		utils.WarnLog("hits", "Zero norm, scores left at zero",
			"iteration", r.Iterations,
			"authority", step.AuthorityDegenerate, "hub", step.HubDegenerate)
	}
	r.Degenerate++
}
