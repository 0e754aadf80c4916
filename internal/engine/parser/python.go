package parser

import (
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type importedName struct {
	name  string
	alias string
}

// extractImports is pass 1: every import statement in the tree, in source
// order, feeds the import table, the usage-table keys and the alias table.
func extractImports(file *ParsedFile) {
	ctx := &WalkContext{Source: file.Source, File: file}
	w := NewWalker(map[string]NodeHandler{
		"import_statement":        handleImport,
		"import_from_statement":   handleFromImport,
		"future_import_statement": handleFutureImport,
	})
	w.Walk(ctx, file.Root())
}

// handleImport covers `import X` and `import X as Y`.
func handleImport(ctx *WalkContext, node *sitter.Node) bool {
	for _, imp := range importedNames(ctx, node, false) {
		module := imp.name
		alias := imp.alias
		if alias == "" {
			alias = module
		}
		ctx.File.Aliases[alias] = module

		stmt := "import " + module
		if alias != module {
			stmt += " as " + alias
		}
		ctx.File.RecordImport(module, stmt)
	}
	return true
}

// handleFromImport covers `from X import Y [as Z]`, relative forms and `*`.
func handleFromImport(ctx *WalkContext, node *sitter.Node) bool {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "import" {
				break
			}
			if child.Kind() == "dotted_name" || child.Kind() == "relative_import" {
				moduleNode = child
				break
			}
		}
	}

	display := ""
	key := ModuleLocal
	if moduleNode != nil {
		display = compactName(ctx.Text(moduleNode))
		switch {
		case display == "":
		case moduleNode.Kind() == "relative_import" || strings.HasPrefix(display, "."):
			key = RelativeMarker + display
		default:
			key = display
		}
	}

	if key == ModuleFuture {
		recordFuture(ctx, importedNames(ctx, node, true))
		return true
	}

	if hasChildKind(node, "wildcard_import") {
		ctx.File.RecordImport(key, "from "+display+" import *")
		ctx.File.RecordUsage(key, WildcardUsage)
		return true
	}

	for _, imp := range importedNames(ctx, node, true) {
		alias := imp.alias
		if alias == "" {
			alias = imp.name
		}
		if key == ModuleLocal {
			ctx.File.Aliases[alias] = imp.name
		} else {
			ctx.File.Aliases[alias] = key + "." + imp.name
		}

		stmt := "from " + display + " import " + imp.name
		if imp.alias != "" {
			stmt += " as " + imp.alias
		}
		ctx.File.RecordImport(key, stmt)
		ctx.File.RecordUsage(key, imp.name)
	}
	return true
}

func handleFutureImport(ctx *WalkContext, node *sitter.Node) bool {
	recordFuture(ctx, importedNames(ctx, node, true))
	return true
}

func recordFuture(ctx *WalkContext, names []importedName) {
	for _, imp := range names {
		stmt := "from " + ModuleFuture + " import " + imp.name
		if imp.alias != "" {
			stmt += " as " + imp.alias
		}
		ctx.File.RecordImport(ModuleFuture, stmt)
		ctx.File.RecordUsage(ModuleFuture, imp.name)
	}
}

// importedNames collects the imported names of a statement. For from-style
// statements only children after the `import` keyword count.
func importedNames(ctx *WalkContext, node *sitter.Node, afterImportKeyword bool) []importedName {
	var out []importedName
	seenImport := !afterImportKeyword
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "import":
			seenImport = true
		case "dotted_name", "identifier":
			if seenImport {
				out = append(out, importedName{name: compactName(ctx.Text(child))})
			}
		case "aliased_import":
			if !seenImport {
				continue
			}
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			imp := importedName{name: compactName(ctx.Text(name)), alias: compactName(ctx.Text(alias))}
			if imp.name == "" {
				// Fall back to positional children: name, "as", alias.
				for j := uint(0); j < child.ChildCount(); j++ {
					sub := child.Child(j)
					if sub.Kind() != "dotted_name" && sub.Kind() != "identifier" {
						continue
					}
					if imp.name == "" {
						imp.name = compactName(ctx.Text(sub))
					} else {
						imp.alias = compactName(ctx.Text(sub))
					}
				}
			}
			out = append(out, imp)
		}
	}
	return out
}

func hasChildKind(node *sitter.Node, kind string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == kind {
			return true
		}
	}
	return false
}

// compactName drops whitespace and line continuations inside dotted names.
func compactName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\\' {
			return -1
		}
		return r
	}, s)
}
