package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrMissingGraphData is returned when a link mapping, page universe or
// page set cannot be read or parsed
var ErrMissingGraphData = errors.New("missing graph data")

// Graph is the read-only hyperlink graph. A page absent from a mapping has
// no links in that direction
type Graph struct {
	Inlinks  map[string][]string
	Outlinks map[string][]string
}

func New(inlinks, outlinks map[string][]string) *Graph {
	if inlinks == nil {
		inlinks = make(map[string][]string)
	}
	if outlinks == nil {
		outlinks = make(map[string][]string)
	}
	return &Graph{Inlinks: inlinks, Outlinks: outlinks}
}

func (g *Graph) In(page string) []string  { return g.Inlinks[page] }
func (g *Graph) Out(page string) []string { return g.Outlinks[page] }

func (g *Graph) InDegree(page string) int  { return len(g.Inlinks[page]) }
func (g *Graph) OutDegree(page string) int { return len(g.Outlinks[page]) }

// Pages having at least one inlink, sorted so that sampling from them is
// reproducible for a fixed random source
func (g *Graph) InlinkPages() []string {
	pages := make([]string, 0, len(g.Inlinks))
	for page := range g.Inlinks {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// Load a resource from the network (http/https) or the local filesystem
func LoadResource(ctx context.Context, resource string) ([]byte, error) {
	if !strings.HasPrefix(resource, "http://") && !strings.HasPrefix(resource, "https://") {
		bytes, err := os.ReadFile(resource)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingGraphData, err)
		}
		return bytes, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingGraphData, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load network file at %s: %v", ErrMissingGraphData, resource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrMissingGraphData, resource, resp.Status)
	}
	bytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read body from %s: %v", ErrMissingGraphData, resource, err)
	}
	return bytes, nil
}

func loadJSON(ctx context.Context, resource string, v any) error {
	bytes, err := LoadResource(ctx, resource)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bytes, v); err != nil {
		return fmt.Errorf("%w: could not parse %s: %v", ErrMissingGraphData, resource, err)
	}
	return nil
}

// Load the inlinks and outlinks mappings (page -> list of pages)
func LoadLinkGraph(ctx context.Context, inlinks, outlinks string) (*Graph, error) {
	var in, out map[string][]string
	if err := loadJSON(ctx, inlinks, &in); err != nil {
		return nil, err
	}
	if err := loadJSON(ctx, outlinks, &out); err != nil {
		return nil, err
	}
	return New(in, out), nil
}

// Load the list of all known page identifiers
func LoadPageUniverse(ctx context.Context, resource string) ([]string, error) {
	var pages []string
	if err := loadJSON(ctx, resource, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// Load a root or base set; duplicated identifiers are dropped, first
// occurrence wins
func LoadPageSet(ctx context.Context, resource string) ([]string, error) {
	var pages []string
	if err := loadJSON(ctx, resource, &pages); err != nil {
		return nil, err
	}
	return Dedup(pages), nil
}

func Dedup(pages []string) []string {
	seen := make(map[string]struct{}, len(pages))
	unique := make([]string, 0, len(pages))
	for _, page := range pages {
		if _, ok := seen[page]; ok {
			continue
		}
		seen[page] = struct{}{}
		unique = append(unique, page)
	}
	return unique
}

func SavePageSet(path string, pages []string) error {
	if pages == nil {
		pages = []string{}
	}
	return WriteJSON(path, pages)
}

// Write the inlinks, outlinks and page universe files
func SaveLinkGraph(inlinks, outlinks, universe string, g *Graph, pages []string) error {
	if err := WriteJSON(inlinks, g.Inlinks); err != nil {
		return err
	}
	if err := WriteJSON(outlinks, g.Outlinks); err != nil {
		return err
	}
	return SavePageSet(universe, pages)
}

// Write v as JSON to path, creating the parent directory if needed
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0o644)
}
