package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
)

// Finder locates nodes in a resolved plan.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root *layout.Node) []*layout.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*layout.Node
	finder Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *layout.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.describe()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *layout.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *layout.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.describe()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*layout.Node { return r.nodes }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.nodes) }

// Exists reports whether at least one node matched.
func (r FinderResult) Exists() bool { return len(r.nodes) > 0 }

// Text returns the plain text of a node: its text runs joined by spaces.
func Text(n *layout.Node) string {
	parts := make([]string, 0, len(n.Texts))
	for _, run := range n.Texts {
		if run.Layout != nil {
			parts = append(parts, run.Layout.Text)
		}
	}
	return strings.Join(parts, " ")
}

type predicateFinder struct {
	fn   func(*layout.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *layout.Node) []*layout.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string { return f.desc }

// ByKind matches nodes produced by elements of kind k.
func ByKind(k element.Kind) Finder {
	return &predicateFinder{
		fn: func(n *layout.Node) bool {
			return n.Role == layout.RoleElement && n.Element != nil && n.Element.Kind() == k
		},
		desc: fmt.Sprintf("ByKind(%s)", k),
	}
}

// ByRole matches nodes by role, for list rows, summaries and placeholders.
func ByRole(r layout.Role) Finder {
	return &predicateFinder{
		fn:   func(n *layout.Node) bool { return n.Role == r },
		desc: fmt.Sprintf("ByRole(%s)", r),
	}
}

// ByText matches nodes whose own text runs read exactly text.
func ByText(text string) Finder {
	return &predicateFinder{
		fn:   func(n *layout.Node) bool { return len(n.Texts) > 0 && Text(n) == text },
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining matches nodes whose own text runs contain substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn:   func(n *layout.Node) bool { return len(n.Texts) > 0 && strings.Contains(Text(n), substring) },
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// ByAction matches interactive nodes bound to action.
func ByAction(action string) Finder {
	return &predicateFinder{
		fn:   func(n *layout.Node) bool { return n.Action == action },
		desc: fmt.Sprintf("ByAction(%q)", action),
	}
}

// ByPredicate matches nodes satisfying fn.
func ByPredicate(fn func(*layout.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *layout.Node) []*layout.Node {
	var results []*layout.Node
	seen := make(map[*layout.Node]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		// Search below the ancestor, not the ancestor itself.
		for _, child := range ancestor.Children {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant matches nodes satisfying matching that sit below a node
// matched by of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root *layout.Node) []*layout.Node {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	var results []*layout.Node
	for _, candidate := range f.matching.Evaluate(root) {
		for _, d := range descendants {
			if candidate != d && isAncestorOf(candidate, d) {
				results = append(results, candidate)
				break
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor matches nodes satisfying matching that contain a node matched
// by of.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

func isAncestorOf(ancestor, descendant *layout.Node) bool {
	found := false
	walkTree(ancestor, func(n *layout.Node) bool {
		if n == descendant {
			found = true
			return false
		}
		return true
	})
	return found
}

func collectMatches(root *layout.Node, predicate func(*layout.Node) bool) []*layout.Node {
	var results []*layout.Node
	walkTree(root, func(n *layout.Node) bool {
		if predicate(n) {
			results = append(results, n)
		}
		return true
	})
	return results
}

// walkTree visits root and its subtree in pre-order until visitor returns
// false.
func walkTree(root *layout.Node, visitor func(*layout.Node) bool) bool {
	if root == nil {
		return true
	}
	if !visitor(root) {
		return false
	}
	for _, child := range root.Children {
		if !walkTree(child, visitor) {
			return false
		}
	}
	return true
}
