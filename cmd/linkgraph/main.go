package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/linkgraph"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
)

var configPath string
var dir string  // Directory of html documents
var urls string // File with one url per line
var perSecond float64
var timeout time.Duration
var index bool

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file (default $CONFIG or config.json)")
	flag.StringVar(&dir, "dir", "", "Directory of *.html documents")
	flag.StringVar(&urls, "urls", "", "File listing the urls to fetch, one per line")
	flag.Float64Var(&perSecond, "rate", 2, "Fetched pages per second")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Timeout of a single fetch")
	flag.BoolVar(&index, "index", false, "Index page texts in DATABASE_URL for retrieval")
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

	var result *linkgraph.Result
	switch {
	case dir != "":
		result, err = linkgraph.FromDirectory(dir)
		utils.FailOnError("Failed to read %s", err, dir)
	case urls != "":
		list, err := readLines(urls)
		utils.FailOnError("Failed to read %s", err, urls)
		result, err = linkgraph.NewFetcher(perSecond, timeout).FromURLs(ctx, list)
		utils.FailOnError("Failed to fetch pages", err)
	default:
		utils.ErrorLog("linkgraph", "One of -dir or -urls is required")
		flag.Usage()
		os.Exit(2)
	}

	err = graph.SaveLinkGraph(config.Inlinks, config.Outlinks, config.Pages, result.Graph, result.Pages)
	utils.FailOnError("Failed to save link graph", err)
	utils.NodeLog("linkgraph", "Link graph saved", "pages", len(result.Pages), "inlinks", config.Inlinks, "outlinks", config.Outlinks)

	if !index {
		return
	}
	db, err := retrieval.NewPostgres(env.DatabaseURL)
	utils.FailOnError("Failed to connect to database", err)
	defer db.Close()
	err = db.CreateTables(ctx)
	utils.FailOnError("Failed to create tables", err)
	for _, page := range result.Pages {
		err = db.IndexPage(ctx, page, result.Texts[page])
		utils.FailOnError("Failed to index %s", err, page)
	}
	utils.NodeLog("linkgraph", "Pages indexed", "pages", len(result.Pages))
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
