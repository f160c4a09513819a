package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/hits"
	"github.com/lioia/topic-hits/pkg/node"
	"github.com/lioia/topic-hits/pkg/render"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var configPath string // config.json location, overrides CONFIG
var format string     // Rendering format of the best ranked pages
var top int           // Pages drawn when rendering
var retrieve bool     // Retrieve the root set from the query instead of the saved sets

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file (default $CONFIG or config.json)")
	flag.StringVar(&format, "render", "", "Render the best ranked pages (dot, svg, png, jpg)")
	flag.IntVar(&top, "top", 25, "Number of ranked pages to render")
	flag.BoolVar(&retrieve, "query", false, "Retrieve the root set from the configured query, ignoring the saved sets")
}

func main() {
	flag.Parse()
	env := utils.ReadEnvVars()
	utils.InitLog(env.NodeLog, env.ServerLog, env.LogLevel)
	if configPath == "" {
		configPath = env.Config
	}
	config, err := utils.LoadConfiguration(configPath)
	utils.FailOnError("Failed to load configuration %s", err, configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.Load(ctx, config)
	utils.FailOnError("Failed to load link graph", err)
	r, closeRetriever, err := retrieval.Open(env.DatabaseURL, config.Ranked)
	utils.FailOnError("Failed to open retriever", err)
	defer closeRetriever()
	n.Retriever = r

	job, err := node.BatchJob(ctx, config, retrieve)
	utils.FailOnError("Failed to load root set", err)
	job.ID, err = gonanoid.New()
	utils.FailOnError("Failed to generate job id", err)

	result, err := n.Compute(ctx, job)
	utils.FailOnError("Computation failed", err)

	authorityPath := filepath.Join(config.Output, "authority.json")
	err = hits.SaveRanking(authorityPath, result.Authority)
	utils.FailOnError("Failed to save %s", err, authorityPath)
	hubPath := filepath.Join(config.Output, "hub.json")
	err = hits.SaveRanking(hubPath, result.Hub)
	utils.FailOnError("Failed to save %s", err, hubPath)
	utils.NodeLog("hits", "Rankings saved", "authority", authorityPath, "hub", hubPath)

	if format != "" {
		draw(config.Output, n.Graph, "authority", result.Authority)
		draw(config.Output, n.Graph, "hub", result.Hub)
	}
}

func draw(dir string, g *graph.Graph, name string, entries []hits.Entry) {
	f, err := render.ParseFormat(format)
	utils.FailOnError("Invalid render format", err)
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", name, format))
	out, err := os.Create(path)
	utils.FailOnError("Failed to create %s", err, path)
	defer out.Close()
	err = render.Render(out, f, g, entries)
	utils.FailOnError("Failed to render %s", err, path)
	utils.NodeLog("hits", "Ranking rendered", "path", path)
}
