// Package graph holds the resolved dependency graph: nodes keyed by import
// string (or the main file path), classified, with edges in the order the
// resolver discovered them.
package graph

import (
	"errors"
	"path"
	"sync"

	dgraph "github.com/dominikbraun/graph"
)

type Classification int

const (
	Unknown Classification = iota
	KnownExternal
	Local
	Main
)

func (c Classification) String() string {
	switch c {
	case Main:
		return "Main"
	case Local:
		return "Local"
	case KnownExternal:
		return "KnownExternal"
	default:
		return "Unknown"
	}
}

// ReportWord is the classification as written in the detailed report.
func (c Classification) ReportWord() string {
	switch c {
	case Main:
		return "main"
	case Local:
		return "custom"
	case KnownExternal:
		return "prebuilt"
	default:
		return "unknown"
	}
}

// Color is the fill color a renderer uses for the classification.
func (c Classification) Color() string {
	switch c {
	case Main:
		return "yellow"
	case Local:
		return "red"
	case KnownExternal:
		return "green"
	default:
		return "purple"
	}
}

// Shape marks the traversal root apart from every other node.
func (c Classification) Shape() string {
	if c == Main {
		return "box"
	}
	return "ellipse"
}

type Node struct {
	ID             string
	Classification Classification
	DisplayName    string
}

type Edge struct {
	From string
	To   string
}

// DependencyGraph is a simple directed graph: repeated edges collapse.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
	edges []Edge
	seen  map[Edge]bool
}

func New() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*Node),
		seen:  make(map[Edge]bool),
	}
}

// AddNode inserts id as Unknown if absent and returns whether it was new.
func (g *DependencyGraph) AddNode(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addNodeLocked(id)
}

func (g *DependencyGraph) addNodeLocked(id string) bool {
	if _, ok := g.nodes[id]; ok {
		return false
	}
	g.nodes[id] = &Node{ID: id, Classification: Unknown, DisplayName: id}
	g.order = append(g.order, id)
	return true
}

// AddEdge inserts both endpoints as needed and reports whether the edge is new.
func (g *DependencyGraph) AddEdge(from, to string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(from)
	g.addNodeLocked(to)
	e := Edge{From: from, To: to}
	if g.seen[e] {
		return false
	}
	g.seen[e] = true
	g.edges = append(g.edges, e)
	return true
}

// Classify sets a node's classification. Local is sticky: a module that
// resolved to a file once is not demoted by a later failed resolution.
func (g *DependencyGraph) Classify(id string, c Classification) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(id)
	n := g.nodes[id]
	if n.Classification == Local && c < Local {
		return
	}
	n.Classification = c
}

// MarkMain makes id the root: classification Main, displayed by base name.
// It is called once, after traversal.
func (g *DependencyGraph) MarkMain(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(id)
	n := g.nodes[id]
	n.Classification = Main
	n.DisplayName = path.Base(id)
}

func (g *DependencyGraph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns nodes in insertion order.
func (g *DependencyGraph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns edges in discovery order.
func (g *DependencyGraph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *DependencyGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

func (g *DependencyGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Root returns the Main node's id, or "" before MarkMain.
func (g *DependencyGraph) Root() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range g.order {
		if g.nodes[id].Classification == Main {
			return id
		}
	}
	return ""
}

// EdgeLabel abbreviates an edge as "<from4> --> <to4>" using display names.
func (g *DependencyGraph) EdgeLabel(e Edge) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return truncate(g.displayName(e.From), 4) + " --> " + truncate(g.displayName(e.To), 4)
}

func (g *DependencyGraph) displayName(id string) string {
	if n, ok := g.nodes[id]; ok {
		return n.DisplayName
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Export builds a rendering-ready copy. Vertices carry classification,
// label, color and shape attributes; edges carry their abbreviated label.
func (g *DependencyGraph) Export() (dgraph.Graph[string, string], error) {
	out := dgraph.New(dgraph.StringHash, dgraph.Directed())
	for _, n := range g.Nodes() {
		err := out.AddVertex(n.ID,
			dgraph.VertexAttribute("classification", n.Classification.String()),
			dgraph.VertexAttribute("label", n.DisplayName),
			dgraph.VertexAttribute("color", n.Classification.Color()),
			dgraph.VertexAttribute("style", "filled"),
			dgraph.VertexAttribute("shape", n.Classification.Shape()),
		)
		if err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	for _, e := range g.Edges() {
		err := out.AddEdge(e.From, e.To, dgraph.EdgeAttribute("label", g.EdgeLabel(e)))
		if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
			return nil, err
		}
	}
	return out, nil
}
