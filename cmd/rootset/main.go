package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lioia/topic-hits/pkg/baseset"
	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
)

var configPath string
var query string
var seed int64
var includeRoot bool

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file (default $CONFIG or config.json)")
	flag.StringVar(&query, "query", "", "Topic query (default: query of the configuration)")
	flag.Int64Var(&seed, "seed", 0, "Sampling seed (default: current time)")
	flag.BoolVar(&includeRoot, "include-root", false, "Add the root pages to the base set")
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
	if query == "" {
		query = config.Query
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, closeRetriever, err := retrieval.Open(env.DatabaseURL, config.Ranked)
	utils.FailOnError("Failed to open retriever", err)
	defer closeRetriever()
	if r == nil {
		utils.ErrorLog("rootset", "Neither DATABASE_URL nor a ranked file is configured")
		os.Exit(1)
	}
	root, err := retrieval.RootSet(ctx, r, query, config.RootSize)
	utils.FailOnError("Failed to retrieve root set", err)

	g, err := graph.LoadLinkGraph(ctx, config.Inlinks, config.Outlinks)
	utils.FailOnError("Failed to load link graph", err)
	opts := baseset.Options{Cap: config.SampleCap, IncludeRoot: includeRoot}
	base := baseset.Expand(root, g, opts, rand.New(rand.NewSource(seed)))

	err = graph.SavePageSet(config.RootSet, root)
	utils.FailOnError("Failed to save %s", err, config.RootSet)
	err = graph.SavePageSet(config.BaseSet, base)
	utils.FailOnError("Failed to save %s", err, config.BaseSet)
	utils.NodeLog("rootset", "Page sets saved", "query", query, "root", len(root), "base", len(base), "seed", seed)
}
