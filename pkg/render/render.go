// Package render draws the subgraph induced by the best ranked pages.
package render

import (
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/lioia/topic-hits/pkg/graph"
	"github.com/lioia/topic-hits/pkg/hits"
)

func ParseFormat(name string) (graphviz.Format, error) {
	switch name {
	case "dot":
		return graphviz.XDOT, nil
	case "svg":
		return graphviz.SVG, nil
	case "png":
		return graphviz.PNG, nil
	case "jpg":
		return graphviz.JPG, nil
	}
	return "", fmt.Errorf("unknown format %q (dot, svg, png, jpg)", name)
}

// Render writes one node per ranked entry, labelled with its score, and the
// outlinks of g between ranked pages
func Render(w io.Writer, format graphviz.Format, g *graph.Graph, entries []hits.Entry) error {
	gv := graphviz.New()
	defer gv.Close()
	drawing, err := gv.Graph()
	if err != nil {
		return err
	}
	defer drawing.Close()

	nodes := make(map[string]*cgraph.Node, len(entries))
	for _, entry := range entries {
		if _, ok := nodes[entry.ID]; ok {
			continue
		}
		node, err := drawing.CreateNode(entry.ID)
		if err != nil {
			return fmt.Errorf("node %s: %w", entry.ID, err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%.4f", entry.ID, entry.Score))
		nodes[entry.ID] = node
	}
	for _, entry := range entries {
		from := nodes[entry.ID]
		for _, target := range g.Out(entry.ID) {
			to, ok := nodes[target]
			if !ok {
				continue
			}
			if _, err := drawing.CreateEdge(entry.ID+"->"+target, from, to); err != nil {
				return fmt.Errorf("edge %s->%s: %w", entry.ID, target, err)
			}
		}
	}
	return gv.Render(drawing, format, w)
}
