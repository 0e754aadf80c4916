package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// locateSyntaxError finds the first ERROR or MISSING node in source order and
// returns its 1-based line with the text of that line.
func locateSyntaxError(root *sitter.Node, source []byte) (int, string) {
	bad := firstErrorNode(root)
	if bad == nil {
		bad = root
	}
	line := NodeLine(bad)
	return line, sourceLine(source, line)
}

func firstErrorNode(root *sitter.Node) *sitter.Node {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			continue
		}
		// Push in reverse so the leftmost child is examined first.
		for i := n.ChildCount(); i > 0; i-- {
			if child := n.Child(i - 1); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return nil
}

func sourceLine(source []byte, line int) string {
	lines := strings.Split(string(source), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Statements the grammar still accepts for Python 2 sources.
var legacyStatementKinds = map[string]bool{
	"print_statement": true,
	"exec_statement":  true,
}

// findStrictSyntaxError reports constructs that the tree-sitter grammar
// tolerates but the Python 3 compiler rejects: Python 2 print/exec
// statements, and statements whose indentation does not match the other
// statements of their block.
func findStrictSyntaxError(root *sitter.Node) *sitter.Node {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if legacyStatementKinds[n.Kind()] {
			return n
		}
		switch n.Kind() {
		case "module":
			if bad := misindentedStatement(n, 0, true); bad != nil {
				return bad
			}
		case "block":
			if bad := misindentedStatement(n, 0, false); bad != nil {
				return bad
			}
		}
		for i := n.ChildCount(); i > 0; i-- {
			if child := n.Child(i - 1); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return nil
}

// misindentedStatement checks that every statement starting a new line in
// body shares one column. A module is pinned to column 0; a block takes the
// column of its first statement. Statements after a semicolon on the same
// line are not checked.
func misindentedStatement(body *sitter.Node, column uint, pinned bool) *sitter.Node {
	prevEndRow := -1
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		startRow := int(child.StartPosition().Row)
		sameLine := startRow == prevEndRow
		prevEndRow = int(child.EndPosition().Row)
		if !child.IsNamed() || child.IsExtra() || child.Kind() == "comment" || sameLine {
			continue
		}
		col := child.StartPosition().Column
		if !pinned {
			column = col
			pinned = true
			continue
		}
		if col != column {
			return child
		}
	}
	return nil
}
