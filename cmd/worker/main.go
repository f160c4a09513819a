package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/lioia/topic-hits/pkg/node"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
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

	// Connect to RabbitMQ
	queue, err := utils.ConnectQueue(env.RabbitURL(), env.WorkQueue, env.ResultQueue)
	utils.FailOnError("Failed to connect to the message queue", err)
	defer queue.Close()
	deliveries, err := queue.Channel.Consume(
		queue.Work.Name, // queue
		"",              // consumer
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	utils.FailOnError("Failed to register a consumer", err)

	// Health service for orchestrators, in a goroutine
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", env.HealthPort))
	utils.FailOnError("Failed to listen for health server", err)
	hs := health.NewServer()
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	go func() {
		utils.ServerLog("Starting health server", "address", lis.Addr().String())
		if err := server.Serve(lis); err != nil {
			utils.ErrorLog("worker", "Health server stopped", "err", err)
		}
	}()
	defer server.GracefulStop()

	w := &node.Worker{Node: n, Channel: queue.Channel, ResultQueue: queue.Result.Name, Health: hs}
	err = w.Run(ctx, deliveries)
	if errors.Is(err, context.Canceled) {
		utils.NodeLog("worker", "Shutting down")
		return
	}
	utils.FailOnError("Worker stopped", err)
}
