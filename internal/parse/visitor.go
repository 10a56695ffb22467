package parse

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nullpx/pypm/internal/domain"
)

// importCtx is the immutable context threaded through the recursive
// visitor: whether the current node is lexically inside a TYPE_CHECKING
// conditional block. try/except arms do not need their own context flag:
// both arms classify as Runtime by default, which already matches the
// desired "primary plus fallback" behavior without extra bookkeeping.
type importCtx struct {
	typeChecking bool
}

// visitor accumulates classified module names and DSN-derived hints
// while walking a parsed Python syntax tree.
type visitor struct {
	content []byte
	result  domain.ParseResult
}

// ExtractImports walks root and returns the classified import sets plus
// any DSN-derived module hints, folded into Runtime.
func ExtractImports(root *tree_sitter.Node, content []byte) domain.ParseResult {
	v := &visitor{content: content}
	v.walk(root, importCtx{})
	for _, hint := range findDSNHints(content) {
		v.result.Runtime = append(v.result.Runtime, hint)
	}
	return v.result
}

func (v *visitor) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(v.content[n.StartByte():n.EndByte()])
}

func (v *visitor) walk(n *tree_sitter.Node, ctx importCtx) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case "import_statement":
		v.visitImportStatement(n, ctx)
		return // import_statement has no nested statements worth recursing into
	case "import_from_statement":
		v.visitImportFromStatement(n, ctx)
		return
	case "if_statement":
		v.visitIfStatement(n, ctx)
		return
	case "call":
		v.visitCall(n, ctx)
		// fall through: arguments may themselves contain nested calls/strings
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		v.walk(n.Child(i), ctx)
	}
}

// visitImportStatement handles `import X`, `import X.Y`, `import X as A`,
// and comma-separated variants. The full dotted name is recorded; callers
// reduce it to its top-level segment (ParseResult.Candidates).
func (v *visitor) visitImportStatement(n *tree_sitter.Node, ctx importCtx) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			v.addImport(v.text(child), ctx)
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				v.addImport(v.text(name), ctx)
			}
		}
	}
}

// visitImportFromStatement handles `from X.Y import Z`. A leading-dot
// relative import (`from .X import Y`) is ignored entirely.
func (v *visitor) visitImportFromStatement(n *tree_sitter.Node, ctx importCtx) {
	module := n.ChildByFieldName("module_name")
	if module == nil {
		return
	}
	if module.Kind() == "relative_import" {
		return // relative imports never resolve to a third-party module
	}
	v.addImport(v.text(module), ctx)
}

// visitIfStatement detects `if TYPE_CHECKING:` (or `if typing.TYPE_CHECKING:`)
// and recurses into its consequence with the typing flag set, while the
// condition itself and any elif/else arms are walked normally.
func (v *visitor) visitIfStatement(n *tree_sitter.Node, ctx importCtx) {
	condition := n.ChildByFieldName("condition")
	consequence := n.ChildByFieldName("consequence")

	innerCtx := ctx
	if condition != nil && isTypeCheckingTest(v.text(condition)) {
		innerCtx.typeChecking = true
	}

	v.walk(consequence, innerCtx)

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil || child == condition || child == consequence {
			continue
		}
		v.walk(child, ctx)
	}
}

// isTypeCheckingTest reports whether a condition expression is the bare
// identifier TYPE_CHECKING or an attribute access ending in .TYPE_CHECKING.
func isTypeCheckingTest(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "TYPE_CHECKING" {
		return true
	}
	return strings.HasSuffix(expr, ".TYPE_CHECKING")
}

// visitCall detects import_module("x"), importlib.import_module("x"),
// and __import__("x") where the first positional argument is a string
// literal, contributing the whole literal (e.g. "plugins.foo") as Dynamic.
func (v *visitor) visitCall(n *tree_sitter.Node, ctx importCtx) {
	if ctx.typeChecking {
		return
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || !isReflectiveImportCallee(v.text(fn)) {
		return
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	first := firstArgument(args)
	if first == nil {
		return
	}
	lit, ok := stringLiteralValue(first, v.content)
	if !ok {
		return
	}
	v.result.Dynamic = append(v.result.Dynamic, domain.ModuleName(lit))
}

func isReflectiveImportCallee(callee string) bool {
	switch callee {
	case "import_module", "importlib.import_module", "__import__":
		return true
	}
	return strings.HasSuffix(callee, ".import_module") && strings.HasPrefix(callee, "importlib")
}

// firstArgument returns the first non-punctuation child of an
// argument_list node.
func firstArgument(argList *tree_sitter.Node) *tree_sitter.Node {
	count := argList.ChildCount()
	for i := uint(0); i < count; i++ {
		child := argList.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "(", ")", ",":
			continue
		}
		return child
	}
	return nil
}

// stringLiteralValue extracts the decoded contents of a Python string
// literal node, handling both the decomposed (string_start/string_content/
// string_end) and flat grammar shapes.
func stringLiteralValue(n *tree_sitter.Node, content []byte) (string, bool) {
	if n.Kind() != "string" {
		return "", false
	}
	count := n.ChildCount()
	var b strings.Builder
	found := false
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "string_content" {
			b.WriteString(string(content[child.StartByte():child.EndByte()]))
			found = true
		}
	}
	if found {
		return b.String(), true
	}
	// Flat grammar: node text includes the surrounding quotes/prefix.
	raw := string(content[n.StartByte():n.EndByte()])
	return stripQuotes(raw), true
}

func stripQuotes(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func (v *visitor) addImport(dottedName string, ctx importCtx) {
	dottedName = strings.TrimSpace(dottedName)
	if dottedName == "" {
		return
	}
	name := domain.ModuleName(dottedName)
	if ctx.typeChecking {
		v.result.Typing = append(v.result.Typing, name)
		return
	}
	v.result.Runtime = append(v.result.Runtime, name)
}
