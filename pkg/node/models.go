package node

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lioia/topic-hits/pkg/baseset"
	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/hits"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
)

var ErrNoRootSet = errors.New("job has neither a root set nor a query")

// Job is a HITS computation request. An empty Root is retrieved from Query,
// an empty Base is expanded from Root
type Job struct {
	ID    string
	Query string
	Root  []string
	Base  []string
	TopK  int
}

type JobResult struct {
	ID         string
	State      string
	Iterations int
	Authority  []hits.Entry
	Hub        []hits.Entry
	Error      string // Set when the job failed, rankings are then empty
}

// Node holds what every job is computed against: the link graph and page
// universe loaded at start-up and the computation parameters
type Node struct {
	Graph     *graph.Graph
	Universe  []string
	Options   hits.Options
	SampleCap int
	RootSize  int
	TopK      int
	Retriever retrieval.Retriever // Optional, needed for jobs with a query
}

// Node configured from config.json values
func New(g *graph.Graph, universe []string, config utils.Config) *Node {
	return &Node{
		Graph:    g,
		Universe: universe,
		Options: hits.Options{
			EpsilonAuthority: config.EpsilonAuthority,
			EpsilonHub:       config.EpsilonHub,
			MaxIterations:    config.MaxIterations,
			StableRounds:     hits.DefaultStableRounds,
		},
		SampleCap: config.SampleCap,
		RootSize:  config.RootSize,
		TopK:      config.TopK,
	}
}

// Root and base sets of job, retrieving and expanding them when missing
func (n *Node) Sets(ctx context.Context, job Job) (root, base []string, err error) {
	root = graph.Dedup(job.Root)
	if len(root) == 0 {
		if job.Query == "" || n.Retriever == nil {
			return nil, nil, ErrNoRootSet
		}
		root, err = retrieval.RootSet(ctx, n.Retriever, job.Query, n.RootSize)
		if err != nil {
			return nil, nil, err
		}
	}
	base = graph.Dedup(job.Base)
	if len(base) == 0 {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		base = baseset.Expand(root, n.Graph, baseset.Options{Cap: n.SampleCap}, rng)
	}
	return root, base, nil
}

func (n *Node) Compute(ctx context.Context, job Job) (*JobResult, error) {
	root, base, err := n.Sets(ctx, job)
	if err != nil {
		return nil, err
	}
	utils.NodeLog("node", "Starting computation", "job", job.ID, "root", len(root), "base", len(base))
	result, err := hits.Run(ctx, hits.Input{
		Graph:    n.Graph,
		Universe: n.Universe,
		Root:     root,
		Base:     base,
	}, n.Options)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}
	topK := job.TopK
	if topK <= 0 {
		topK = n.TopK
	}
	return &JobResult{
		ID:         job.ID,
		State:      result.State.String(),
		Iterations: result.Iterations,
		Authority:  hits.Rank(result.Authority, n.Graph, topK),
		Hub:        hits.Rank(result.Hub, n.Graph, topK),
	}, nil
}

// Load reads the link graph and page universe named by config and returns
// the node computing jobs over them
func Load(ctx context.Context, config utils.Config) (*Node, error) {
	g, err := graph.LoadLinkGraph(ctx, config.Inlinks, config.Outlinks)
	if err != nil {
		return nil, err
	}
	universe, err := graph.LoadPageUniverse(ctx, config.Pages)
	if err != nil {
		return nil, err
	}
	utils.NodeLog("node", "Link graph loaded", "pages", len(universe), "linked", len(g.Outlinks))
	return New(g, universe, config), nil
}

// BatchJob builds a batch run from the root and base set files named by
// config. config.Query is only used when the root set file cannot be
// loaded, or always when retrieve is set. A missing base set file leaves
// Base empty so that it is expanded from the root set
func BatchJob(ctx context.Context, config utils.Config, retrieve bool) (Job, error) {
	if retrieve {
		if config.Query == "" {
			return Job{}, ErrNoRootSet
		}
		return Job{Query: config.Query}, nil
	}
	root, err := graph.LoadPageSet(ctx, config.RootSet)
	if err != nil {
		if config.Query == "" {
			return Job{}, err
		}
		utils.WarnLog("node", "No root set, retrieving it from the query", "query", config.Query, "err", err)
		return Job{Query: config.Query}, nil
	}
	job := Job{Root: root}
	if job.Base, err = graph.LoadPageSet(ctx, config.BaseSet); err != nil {
		utils.WarnLog("node", "No base set, expanding the root set", "err", err)
	}
	return job, nil
}
