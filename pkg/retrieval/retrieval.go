// Package retrieval produces the root set: the pages best matching a text
// query.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/lioia/topic-hits/pkg/graph"
)

var ErrEmptyQuery = errors.New("empty query")

type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Retriever returns up to size pages matching query with their text-match
// score
type Retriever interface {
	Search(ctx context.Context, query string, size int) ([]Hit, error)
}

// RootSet returns the identifiers of the n best scoring hits for query,
// best first. Hits with equal scores keep the retriever's order
func RootSet(ctx context.Context, r Retriever, query string, n int) ([]string, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	hits, err := r.Search(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ID)
	}
	ids = graph.Dedup(ids)
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids, nil
}

// File serves hits from a pre-ranked JSON list of {"id", "score"} objects,
// whatever the query
type File struct {
	Path string
}

func (f File) Search(ctx context.Context, query string, size int) ([]Hit, error) {
	bytes, err := graph.LoadResource(ctx, f.Path)
	if err != nil {
		return nil, err
	}
	var hits []Hit
	if err := json.Unmarshal(bytes, &hits); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return hits, nil
}

// Open returns the Postgres retriever when databaseURL is set, otherwise
// the file retriever over ranked when it is set, otherwise nil. The
// returned function releases the retriever
func Open(databaseURL, ranked string) (Retriever, func() error, error) {
	switch {
	case databaseURL != "":
		p, err := NewPostgres(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case ranked != "":
		return File{Path: ranked}, func() error { return nil }, nil
	}
	return nil, func() error { return nil }, nil
}
