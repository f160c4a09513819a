package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/lioia/topic-hits/pkg/hits"
	"github.com/lioia/topic-hits/pkg/node"
	"github.com/lioia/topic-hits/pkg/utils"
)

var query string          // Topic query, used when no root set is given
var root string           // Comma-separated root pages
var top int               // Pages requested per ranking
var timeout time.Duration // Time to wait for the result

func init() {
	flag.StringVar(&query, "query", "", "Topic query")
	flag.StringVar(&root, "root", "", "Comma-separated root set")
	flag.IntVar(&top, "top", 10, "Number of ranked pages")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Time to wait for the result")
}

func main() {
	flag.Parse()
	env := utils.ReadEnvVars()
	utils.InitLog(env.NodeLog, env.ServerLog, env.LogLevel)

	job := node.Job{Query: query, TopK: top}
	if root != "" {
		job.Root = strings.Split(root, ",")
	}

	queue, err := utils.ConnectQueue(env.RabbitURL(), env.WorkQueue, env.ResultQueue)
	utils.FailOnError("Failed to connect to the message queue", err)
	defer queue.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	result, err := node.Submit(ctx, queue.Channel, queue.Work.Name, job)
	utils.FailOnError("Job failed", err)

	fmt.Printf("Job %s %s after %d iterations\n", result.ID, result.State, result.Iterations)
	printRanking("Authorities", result.Authority)
	printRanking("Hubs", result.Hub)
}

func printRanking(title string, entries []hits.Entry) {
	fmt.Printf("%s:\n", title)
	for i, e := range entries {
		fmt.Printf("%4d. %s -> %f (out %d, in %d)\n", i+1, e.ID, e.Score, e.OutDegree, e.InDegree)
	}
}
