package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node during a walk.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *WalkContext, node *sitter.Node) bool

// WalkContext carries shared state/helpers used by node handlers.
type WalkContext struct {
	Source []byte
	File   *ParsedFile
}

// Walker walks the syntax tree in pre-order and dispatches handlers by node kind.
type Walker struct {
	handlers map[string]NodeHandler
}

func NewWalker(handlers map[string]NodeHandler) *Walker {
	return &Walker{handlers: handlers}
}

func (w *Walker) Walk(ctx *WalkContext, node *sitter.Node) {
	if node == nil {
		return
	}

	stop := false
	if handler, ok := w.handlers[node.Kind()]; ok {
		stop = handler(ctx, node)
	}

	if !stop {
		for i := uint(0); i < node.ChildCount(); i++ {
			w.Walk(ctx, node.Child(i))
		}
	}
}

func (c *WalkContext) Text(node *sitter.Node) string {
	return NodeText(c.Source, node)
}

// NodeText returns the source slice covered by node.
func NodeText(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// NodeLine returns the 1-based line where node starts.
func NodeLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}
