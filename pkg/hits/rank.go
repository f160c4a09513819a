package hits

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/lioia/topic-hits/pkg/graph"
)

const DefaultTopK = 1000

// Entry is a ranked page joined with its degrees. Its JSON form is the
// array [id, score, outdegree, indegree]
type Entry struct {
	ID        string
	Score     float64
	OutDegree int
	InDegree  int
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.ID, e.Score, e.OutDegree, e.InDegree})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 4 {
		return fmt.Errorf("ranked entry has %d fields, want 4", len(fields))
	}
	if err := json.Unmarshal(fields[0], &e.ID); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if err := json.Unmarshal(fields[1], &e.Score); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	if err := json.Unmarshal(fields[2], &e.OutDegree); err != nil {
		return fmt.Errorf("outdegree: %w", err)
	}
	if err := json.Unmarshal(fields[3], &e.InDegree); err != nil {
		return fmt.Errorf("indegree: %w", err)
	}
	return nil
}

// Rank sorts the pages of t by score, highest first, keeping insertion
// order between equal scores, and returns the first k joined with their
// degrees in g. k <= 0 keeps every page
func Rank(t *Table, g *graph.Graph, k int) []Entry {
	entries := make([]Entry, 0, t.Len())
	for _, page := range t.keys {
		entries = append(entries, Entry{
			ID:        page,
			Score:     t.scores[page],
			OutDegree: g.OutDegree(page),
			InDegree:  g.InDegree(page),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

func EncodeRanking(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

func DecodeRanking(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Write the ranking as a JSON array of [id, score, outdegree, indegree]
func SaveRanking(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return graph.WriteJSON(path, entries)
}

func LoadRanking(path string) ([]Entry, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := DecodeRanking(bytes)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}
