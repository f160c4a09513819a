package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLinkGraph(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "inlinks.json", `{"b": ["a"], "c": ["a", "b"]}`)
	out := writeFile(t, dir, "outlinks.json", `{"a": ["b", "c"], "b": ["c"]}`)

	g, err := LoadLinkGraph(context.Background(), in, out)
	if err != nil {
		t.Fatalf("LoadLinkGraph() error = %v", err)
	}
	tests := []struct {
		page    string
		in, out int
	}{
		{"a", 0, 2},
		{"b", 1, 1},
		{"c", 2, 0},
		{"unknown", 0, 0},
	}
	for _, tc := range tests {
		if got := g.InDegree(tc.page); got != tc.in {
			t.Errorf("InDegree(%s) = %d, want %d", tc.page, got, tc.in)
		}
		if got := g.OutDegree(tc.page); got != tc.out {
			t.Errorf("OutDegree(%s) = %d, want %d", tc.page, got, tc.out)
		}
	}
	if got, want := g.InlinkPages(), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InlinkPages() = %v, want %v", got, want)
	}
}

func TestLoadMissingGraphData(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.json", `{"a": [`)
	valid := writeFile(t, dir, "valid.json", `{}`)

	tests := []struct {
		name string
		load func() error
	}{
		{"MissingInlinks", func() error {
			_, err := LoadLinkGraph(context.Background(), filepath.Join(dir, "nope.json"), valid)
			return err
		}},
		{"BrokenOutlinks", func() error {
			_, err := LoadLinkGraph(context.Background(), valid, broken)
			return err
		}},
		{"MissingUniverse", func() error {
			_, err := LoadPageUniverse(context.Background(), filepath.Join(dir, "nope.json"))
			return err
		}},
		{"WrongShape", func() error {
			_, err := LoadPageSet(context.Background(), valid)
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.load(); !errors.Is(err, ErrMissingGraphData) {
				t.Fatalf("error = %v, want ErrMissingGraphData", err)
			}
		})
	}
}

func TestLoadResourceOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/docno_list.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`["a", "b", "c"]`))
	}))
	defer server.Close()

	pages, err := LoadPageUniverse(context.Background(), server.URL+"/docno_list.json")
	if err != nil {
		t.Fatalf("LoadPageUniverse() error = %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(pages, want) {
		t.Fatalf("LoadPageUniverse() = %v, want %v", pages, want)
	}

	_, err = LoadPageUniverse(context.Background(), server.URL+"/missing.json")
	if !errors.Is(err, ErrMissingGraphData) {
		t.Fatalf("error = %v, want ErrMissingGraphData", err)
	}
}

func TestPageSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info", "root_set.json")
	if err := SavePageSet(path, []string{"b", "a", "b", "c"}); err != nil {
		t.Fatalf("SavePageSet() error = %v", err)
	}
	pages, err := LoadPageSet(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadPageSet() error = %v", err)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(pages, want) {
		t.Fatalf("LoadPageSet() = %v, want %v", pages, want)
	}
}
