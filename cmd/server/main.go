package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lioia/topic-hits/pkg/api"
	"github.com/lioia/topic-hits/pkg/node"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file (default $CONFIG or config.json)")
}

func main() {
	flag.Parse()
	// Read environment variables
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

	err = api.Serve(ctx, api.New(n), fmt.Sprintf(":%d", env.ApiPort))
	utils.FailOnError("Failed to serve", err)
}
