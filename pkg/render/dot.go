// Package render exports resolved dependency graphs as Graphviz diagrams.
//
// The walked graph (direct dependency roots with their Dependencies edges
// assigned) converts to DOT with [ToDOT]; [RenderSVG] and [RenderPNG]
// rasterize the DOT through the in-process Graphviz bindings.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/caravel-cli/caravel/pkg/maven"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes version, packaging, and repository in node labels.
	// When false, only the coordinate is shown.
	Detailed bool
}

// ToDOT converts a walked dependency graph to Graphviz DOT format.
// Nodes are deduplicated by full artifact identity; POM-packaged
// artifacts (BOMs) render with dashed outlines.
func ToDOT(roots []*maven.Artifact, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	type edge struct{ from, to string }
	var nodes []*maven.Artifact
	var edges []edge
	seenNode := make(map[string]bool)
	seenEdge := make(map[edge]bool)

	queue := append([]*maven.Artifact{}, roots...)
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		if !seenNode[a.ID()] {
			seenNode[a.ID()] = true
			nodes = append(nodes, a)
		}
		for _, child := range a.Dependencies {
			e := edge{from: a.ID(), to: child.ID()}
			if !seenEdge[e] {
				seenEdge[e] = true
				edges = append(edges, e)
				queue = append(queue, child)
			}
		}
	}

	for _, a := range nodes {
		attrs := []string{fmt.Sprintf("label=%q", label(a, opts.Detailed))}
		if a.IsPOMOnly() {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", a.ID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(a *maven.Artifact, detailed bool) string {
	if !detailed {
		return a.GA() + "\n" + a.Version
	}
	parts := []string{a.GA(), "version: " + a.Version}
	if a.Packaging != "" {
		parts = append(parts, "packaging: "+a.Packaging)
	}
	if a.Repository != nil {
		parts = append(parts, "repo: "+a.Repository.Name)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderAs(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderAs(dot, graphviz.PNG)
}

func renderAs(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
