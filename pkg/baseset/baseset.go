// Package baseset expands a root set into the base set HITS computes hub
// scores over.
package baseset

import (
	"math/rand"

	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/utils"
)

const DefaultCap = 200

type Options struct {
	// Maximum number of inlinks taken from a single root page. Above it, Cap
	// pages are sampled from every page having inlinks instead
	Cap int
	// Also add the root pages themselves
	IncludeRoot bool
}

// Expand collects, for every root page, all its outlinks and either all its
// inlinks or a random sample of Cap pages when it has more than Cap
// inlinks. The result is in first-seen order without duplicates
func Expand(root []string, g *graph.Graph, opts Options, rng *rand.Rand) []string {
	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}
	var (
		seen     = make(map[string]struct{})
		base     []string
		universe []string
		sampled  int
	)
	add := func(pages []string) {
		for _, page := range pages {
			if _, ok := seen[page]; ok {
				continue
			}
			seen[page] = struct{}{}
			base = append(base, page)
		}
	}

	for _, page := range root {
		if opts.IncludeRoot {
			add([]string{page})
		}
		add(g.Out(page))
		in := g.In(page)
		if len(in) <= opts.Cap {
			add(in)
			continue
		}
		if universe == nil {
			universe = g.InlinkPages()
		}
		add(Sample(universe, opts.Cap, rng))
		sampled++
	}
	utils.DebugLog("baseset", "Expanded root set",
		"root", len(root), "base", len(base), "sampled", sampled)
	return base
}

// Sample returns n distinct pages picked uniformly from pages. When pages
// holds n pages or fewer, all of them are returned
func Sample(pages []string, n int, rng *rand.Rand) []string {
	if n >= len(pages) {
		all := make([]string, len(pages))
		copy(all, pages)
		return all
	}
	// Few picks from a large universe: reject duplicates
	if 2*n <= len(pages) {
		picked := make(map[int]struct{}, n)
		sample := make([]string, 0, n)
		for len(sample) < n {
			i := rng.Intn(len(pages))
			if _, ok := picked[i]; ok {
				continue
			}
			picked[i] = struct{}{}
			sample = append(sample, pages[i])
		}
		return sample
	}
	// Otherwise a partial shuffle of the indices
	perm := rng.Perm(len(pages))
	sample := make([]string, n)
	for i := 0; i < n; i++ {
		sample[i] = pages[perm[i]]
	}
	return sample
}
