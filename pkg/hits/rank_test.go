package hits

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lioia/topic-hits/pkg/graph"
)

func TestRankStableTopK(t *testing.T) {
	scores := NewTable(3)
	scores.Set("p3", 0.1)
	scores.Set("p1", 0.9)
	scores.Set("p2", 0.9)
	g := graph.New(
		map[string][]string{"p2": {"y", "z"}},
		map[string][]string{"p1": {"x"}},
	)

	got := Rank(scores, g, 2)
	want := []Entry{
		{ID: "p1", Score: 0.9, OutDegree: 1, InDegree: 0},
		{ID: "p2", Score: 0.9, OutDegree: 0, InDegree: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %+v, want %+v", got, want)
	}
}

func TestRankKeepsAllWhenKIsZero(t *testing.T) {
	scores := Uniform([]string{"a", "b", "c"}, 1)
	if got := Rank(scores, graph.New(nil, nil), 0); len(got) != 3 {
		t.Fatalf("Rank() returned %d entries, want 3", len(got))
	}
}

func TestEntryJSON(t *testing.T) {
	data, err := EncodeRanking([]Entry{{ID: "p1", Score: 0.5, OutDegree: 3, InDegree: 7}})
	if err != nil {
		t.Fatalf("EncodeRanking() error = %v", err)
	}
	if got, want := string(data), `[["p1",0.5,3,7]]`; got != want {
		t.Fatalf("EncodeRanking() = %s, want %s", got, want)
	}
	if data, _ := EncodeRanking(nil); string(data) != "[]" {
		t.Fatalf("EncodeRanking(nil) = %s, want []", data)
	}

	for _, bad := range []string{`[["p1",0.5,3]]`, `[[1,0.5,3,7]]`, `[{"id":"p1"}]`} {
		if _, err := DecodeRanking([]byte(bad)); err == nil {
			t.Errorf("DecodeRanking(%s) succeeded, want error", bad)
		}
	}
}

func TestRankingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "result", "authority.json")
	second := filepath.Join(dir, "copy.json")
	entries := []Entry{
		{ID: "clueweb-01", Score: 0.7071067811865475, OutDegree: 12, InDegree: 0},
		{ID: "clueweb-02", Score: 1e-12, OutDegree: 0, InDegree: 4},
		{ID: "clueweb-03", Score: 0, OutDegree: 0, InDegree: 0},
	}
	if err := SaveRanking(first, entries); err != nil {
		t.Fatalf("SaveRanking() error = %v", err)
	}
	loaded, err := LoadRanking(first)
	if err != nil {
		t.Fatalf("LoadRanking() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, entries) {
		t.Fatalf("LoadRanking() = %+v, want %+v", loaded, entries)
	}
	if err := SaveRanking(second, loaded); err != nil {
		t.Fatalf("SaveRanking() error = %v", err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Fatalf("round trip changed content:\n%s\n%s", a, b)
	}
}
