// Package linkgraph builds the inlinks/outlinks mappings and the page
// universe from HTML documents.
package linkgraph

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lioia/topic-hits/pkg/graph"
)

// Page is a parsed document: its resolved link targets and its visible text
type Page struct {
	ID    string
	Links []string
	Text  string
}

type Result struct {
	Graph *graph.Graph
	Pages []string          // Page universe, in input order
	Texts map[string]string // Page text, used to index pages for retrieval
}

// Parse extracts the absolute targets of every a[href] of the document,
// resolved against base, and the document text
func Parse(r io.Reader, base *url.URL) (links []string, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		target, err := base.Parse(href)
		if err != nil {
			return
		}
		links = append(links, Normalize(target))
	})
	doc.Find("script, style").Remove()
	text = strings.Join(strings.Fields(doc.Text()), " ")
	return links, text, nil
}

// Normalize drops the fragment and gives an empty path the root path
func Normalize(u *url.URL) string {
	n := *u
	n.Fragment = ""
	if n.Path == "" {
		n.Path = "/"
	}
	return n.String()
}

// Build keeps the links whose target resolves to a known page, dropping
// self links and repeated edges. resolve maps a link target to a page
// identifier, returning false for targets outside the corpus
func Build(pages []Page, resolve func(target string) (string, bool)) *Result {
	known := make(map[string]struct{}, len(pages))
	universe := make([]string, 0, len(pages))
	for _, page := range pages {
		if _, ok := known[page.ID]; ok {
			continue
		}
		known[page.ID] = struct{}{}
		universe = append(universe, page.ID)
	}

	in := make(map[string][]string)
	out := make(map[string][]string)
	texts := make(map[string]string, len(pages))
	edges := make(map[[2]string]struct{})
	for _, page := range pages {
		texts[page.ID] = page.Text
		for _, link := range page.Links {
			target, ok := resolve(link)
			if !ok || target == page.ID {
				continue
			}
			if _, ok := known[target]; !ok {
				continue
			}
			edge := [2]string{page.ID, target}
			if _, ok := edges[edge]; ok {
				continue
			}
			edges[edge] = struct{}{}
			out[page.ID] = append(out[page.ID], target)
			in[target] = append(in[target], page.ID)
		}
	}
	return &Result{Graph: graph.New(in, out), Pages: universe, Texts: texts}
}
