// Package hits computes HITS authority and hub scores over the part of a
// link graph selected by a root set (authorities) and a base set (hubs).
package hits

import (
	"math"

	"github.com/lioia/topic-hits/pkg/graph"
	"golang.org/x/sync/errgroup"
)

// Step is the outcome of one iteration. A degenerate table had a zero norm
// and was left unnormalized (all of its scores are zero)
type Step struct {
	Authority           *Table
	Hub                 *Table
	AuthorityDegenerate bool
	HubDegenerate       bool
}

// Initial authority and hub tables: every known page starts at 1
func Init(universe []string) (authority, hub *Table) {
	return Uniform(universe, 1), Uniform(universe, 1)
}

// Iterate computes the next authority and hub tables.
//
//	a'(p) = sum of h(q) over inlinks q of p, for p in root
//	h'(p) = sum of a(r) over outlinks r of p, for p in base
//
// A linked page only contributes when it is a key of the table being
// recomputed (authority for inlinks, hub for outlinks). Both results are
// L2-normalized. The two tables are computed concurrently; they only read
// authority and hub, which must not change until Iterate returns
func Iterate(authority, hub *Table, root, base []string, g *graph.Graph) Step {
	var step Step
	var eg errgroup.Group
	eg.Go(func() error {
		step.Authority = propagate(root, g.In, authority, hub)
		step.AuthorityDegenerate = !step.Authority.Normalize()
		return nil
	})
	eg.Go(func() error {
		step.Hub = propagate(base, g.Out, hub, authority)
		step.HubDegenerate = !step.Hub.Normalize()
		return nil
	})
	// Neither goroutine fails, Wait only joins them
	_ = eg.Wait()
	return step
}

// For every page sum the source scores of its linked pages that are keys
// of scored
func propagate(pages []string, links func(string) []string, scored, source *Table) *Table {
	next := NewTable(len(pages))
	for _, page := range pages {
		sum := 0.0
		for _, linked := range links(page) {
			if scored.Has(linked) {
				sum += source.Get(linked)
			}
		}
		next.Set(page, sum)
	}
	return next
}

// Difference between the score totals of the previous and the new tables.
// Totals are taken over the pages of the new tables
func Gaps(authority, hub, newAuthority, newHub *Table) (authorityGap, hubGap float64) {
	return gap(authority, newAuthority), gap(hub, newHub)
}

func gap(previous, next *Table) float64 {
	previousTotal := 0.0
	for _, page := range next.keys {
		previousTotal += previous.Get(page)
	}
	return math.Abs(previousTotal - next.Sum())
}

// Converged reports whether both totals moved less than their epsilon.
// This is a global criterion: per-page changes that cancel out are not seen
func Converged(authority, hub, newAuthority, newHub *Table, epsilonAuthority, epsilonHub float64) bool {
	authorityGap, hubGap := Gaps(authority, hub, newAuthority, newHub)
	return authorityGap < epsilonAuthority && hubGap < epsilonHub
}
