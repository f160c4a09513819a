package node

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/hits"
	"github.com/lioia/topic-hits/pkg/retrieval"
	"github.com/lioia/topic-hits/pkg/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeRetriever []retrieval.Hit

func (f fakeRetriever) Search(context.Context, string, int) ([]retrieval.Hit, error) {
	return append([]retrieval.Hit(nil), f...), nil
}

// a <-> b, c -> a
func testNode() *Node {
	g := graph.New(
		map[string][]string{"a": {"b", "c"}, "b": {"a"}},
		map[string][]string{"a": {"b"}, "b": {"a"}, "c": {"a"}},
	)
	return New(g, []string{"a", "b", "c"}, utils.DefaultConfiguration())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"inlinks.json":    `{"a": ["b"], "b": ["a"]}`,
		"outlinks.json":   `{"a": ["b"], "b": ["a"]}`,
		"docno_list.json": `["a", "b", "c"]`,
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	config := utils.DefaultConfiguration()
	config.Inlinks = filepath.Join(dir, "inlinks.json")
	config.Outlinks = filepath.Join(dir, "outlinks.json")
	config.Pages = filepath.Join(dir, "docno_list.json")
	n, err := Load(context.Background(), config)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(n.Universe) != 3 || n.Graph.OutDegree("a") != 1 {
		t.Fatalf("Load() = %+v", n)
	}

	config.Pages = filepath.Join(dir, "missing.json")
	if _, err := Load(context.Background(), config); !errors.Is(err, graph.ErrMissingGraphData) {
		t.Fatalf("Load() error = %v, want ErrMissingGraphData", err)
	}
}

func TestBatchJob(t *testing.T) {
	dir := t.TempDir()
	config := utils.DefaultConfiguration()
	config.Query = "ship collision"
	config.RootSet = filepath.Join(dir, "root_set.json")
	config.BaseSet = filepath.Join(dir, "base_set.json")
	ctx := context.Background()

	// Saved sets are scored even when a query is configured
	if err := graph.SavePageSet(config.RootSet, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if err := graph.SavePageSet(config.BaseSet, []string{"c"}); err != nil {
		t.Fatal(err)
	}
	job, err := BatchJob(ctx, config, false)
	if err != nil {
		t.Fatalf("BatchJob() error = %v", err)
	}
	want := Job{Root: []string{"a", "b"}, Base: []string{"c"}}
	if !reflect.DeepEqual(job, want) {
		t.Fatalf("BatchJob() = %+v, want %+v", job, want)
	}

	job, err = BatchJob(ctx, config, true)
	if err != nil || !reflect.DeepEqual(job, Job{Query: "ship collision"}) {
		t.Fatalf("BatchJob(retrieve) = %+v, %v", job, err)
	}

	if err := os.Remove(config.BaseSet); err != nil {
		t.Fatal(err)
	}
	job, err = BatchJob(ctx, config, false)
	if err != nil || len(job.Base) != 0 || len(job.Root) != 2 {
		t.Fatalf("BatchJob() without base set = %+v, %v", job, err)
	}

	if err := os.Remove(config.RootSet); err != nil {
		t.Fatal(err)
	}
	job, err = BatchJob(ctx, config, false)
	if err != nil || !reflect.DeepEqual(job, Job{Query: "ship collision"}) {
		t.Fatalf("BatchJob() without root set = %+v, %v", job, err)
	}

	config.Query = ""
	if _, err := BatchJob(ctx, config, false); !errors.Is(err, graph.ErrMissingGraphData) {
		t.Fatalf("BatchJob() error = %v, want ErrMissingGraphData", err)
	}
	if _, err := BatchJob(ctx, config, true); !errors.Is(err, ErrNoRootSet) {
		t.Fatalf("BatchJob(retrieve) error = %v, want ErrNoRootSet", err)
	}
}

func TestJobCodec(t *testing.T) {
	job := Job{ID: "V1StGXR8_Z5jdHi6B-myT", Query: "ship collision", Root: []string{"a", "b"}, TopK: 10}
	data, err := EncodeJob(job)
	if err != nil {
		t.Fatalf("EncodeJob() error = %v", err)
	}
	got, err := DecodeJob(data)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	job.Base = []string{}
	if !reflect.DeepEqual(got, job) {
		t.Fatalf("DecodeJob() = %+v, want %+v", got, job)
	}

	if _, err := DecodeJob([]byte{0xff, 0xff}); err == nil {
		t.Fatal("DecodeJob() accepted garbage")
	}
}

func TestResultCodec(t *testing.T) {
	result := &JobResult{
		ID: "job", State: "converged", Iterations: 5,
		Authority: []hits.Entry{{ID: "a", Score: 0.75, OutDegree: 1, InDegree: 2}},
		Hub:       []hits.Entry{},
	}
	data, err := EncodeResult(result)
	if err != nil {
		t.Fatalf("EncodeResult() error = %v", err)
	}
	got, err := DecodeResult(data)
	if err != nil {
		t.Fatalf("DecodeResult() error = %v", err)
	}
	if !reflect.DeepEqual(got, result) {
		t.Fatalf("DecodeResult() = %+v, want %+v", got, result)
	}
}

func TestComputeExpandsBaseSet(t *testing.T) {
	n := testNode()
	result, err := n.Compute(context.Background(), Job{ID: "job", Root: []string{"a"}})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result.State != "converged" {
		t.Fatalf("state = %s, want converged", result.State)
	}
	if len(result.Authority) != 1 || result.Authority[0].ID != "a" || result.Authority[0].InDegree != 2 {
		t.Fatalf("authority = %+v", result.Authority)
	}
	var hubs []string
	for _, e := range result.Hub {
		hubs = append(hubs, e.ID)
	}
	if len(hubs) != 2 {
		t.Fatalf("hub pages = %v, want b and c", hubs)
	}
}

func TestComputeRetrievesRootSet(t *testing.T) {
	n := testNode()
	if _, err := n.Compute(context.Background(), Job{ID: "job", Query: "anything"}); !errors.Is(err, ErrNoRootSet) {
		t.Fatalf("Compute() without retriever error = %v, want ErrNoRootSet", err)
	}

	n.Retriever = fakeRetriever{{ID: "b", Score: 2}, {ID: "a", Score: 1}}
	n.RootSize = 1
	root, _, err := n.Sets(context.Background(), Job{Query: "anything"})
	if err != nil {
		t.Fatalf("Sets() error = %v", err)
	}
	if !reflect.DeepEqual(root, []string{"b"}) {
		t.Fatalf("root = %v, want [b]", root)
	}
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(uint64, bool) error { return nil }

type fakePublisher struct {
	mu        sync.Mutex
	keys      []string
	published []amqp.Publishing
}

func (f *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func TestWorkerRun(t *testing.T) {
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	hs := health.NewServer()
	w := &Worker{Node: testNode(), Channel: pub, ResultQueue: "hits_result", Health: hs}

	good, _ := EncodeJob(Job{ID: "good", Root: []string{"a"}})
	failing, _ := EncodeJob(Job{ID: "failing"})
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: good, ReplyTo: "reply"}
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: failing}
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: []byte{0xff, 0xff}}
	close(deliveries)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.Run(ctx, deliveries); err == nil {
		t.Fatal("Run() returned nil after the channel was closed")
	}

	if ack.acks != 2 || ack.nacks != 1 || ack.requeue {
		t.Fatalf("acks = %d, nacks = %d (requeue %v), want 2 acks and 1 nack without requeue",
			ack.acks, ack.nacks, ack.requeue)
	}
	if want := []string{"reply", "hits_result"}; !reflect.DeepEqual(pub.keys, want) {
		t.Fatalf("published to %v, want %v", pub.keys, want)
	}
	first, err := DecodeResult(pub.published[0].Body)
	if err != nil || first.ID != "good" || first.Error != "" {
		t.Fatalf("first result = %+v, err = %v", first, err)
	}
	second, err := DecodeResult(pub.published[1].Body)
	if err != nil || second.Error == "" {
		t.Fatalf("second result = %+v, err = %v, want an error result", second, err)
	}

	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health Check() error = %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("health status = %v after Run returned, want NOT_SERVING", resp.Status)
	}
}

func TestWorkerRequeuesInterruptedJob(t *testing.T) {
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}
	w := &Worker{Node: testNode(), Channel: pub, ResultQueue: "hits_result"}

	body, _ := EncodeJob(Job{ID: "inflight", Root: []string{"a"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.handle(ctx, amqp.Delivery{Acknowledger: ack, Body: body, ReplyTo: "reply"})

	if ack.acks != 0 || ack.nacks != 1 || !ack.requeue {
		t.Fatalf("acks = %d, nacks = %d (requeue %v), want 1 nack with requeue",
			ack.acks, ack.nacks, ack.requeue)
	}
	if len(pub.published) != 0 {
		t.Fatalf("published %d results for an interrupted job", len(pub.published))
	}
}
