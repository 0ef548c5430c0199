// Package browse holds the lazily loaded ontology tree shown on the browse tab.
//
// Children are fetched one level at a time. To know whether a node can be
// expanded before the user opens it, every newly added node is probed for
// children of its own (the "second level"); probe results only set
// HasChildren and do not make the node Loaded.
package browse

import (
	"github.com/compomics/ols-dialog/pkg/model"
)

// ChildState records what is known about a node's children
type ChildState int

const (
	ChildrenUnknown ChildState = iota
	ChildrenYes
	ChildrenNo
)

// Node is one term in the tree. A term reachable through several parents
// appears once per parent.
type Node struct {
	ID          string
	Name        string
	Depth       int
	Expanded    bool
	Loaded      bool
	HasChildren ChildState
	Children    []*Node
	Parent      *Node
}

// Label is the text shown for the node.
func (n *Node) Label() string {
	if n.Name == "" {
		return n.ID
	}
	return n.Name + " [" + n.ID + "]"
}

// IsPlaceholder reports whether the node stands in for an empty ontology.
func (n *Node) IsPlaceholder() bool {
	return n.ID == model.NoRootTermsID
}

// Expandable reports whether opening the node may reveal children.
func (n *Node) Expandable() bool {
	return !n.IsPlaceholder() && n.HasChildren != ChildrenNo
}

// Tree is the browse tab's model
type Tree struct {
	Label string
	Roots []*Node
}

// New creates an empty tree with the given root label.
func New(label string) *Tree {
	return &Tree{Label: label}
}

// Reset drops every node and relabels the tree.
func (t *Tree) Reset(label string) {
	t.Label = label
	t.Roots = nil
}

// SetRoots replaces the top level. An empty list yields the placeholder node.
func (t *Tree) SetRoots(terms []model.Term) {
	t.Roots = nil
	if len(terms) == 0 {
		t.Roots = []*Node{{ID: model.NoRootTermsID, Loaded: true, HasChildren: ChildrenNo}}
		return
	}
	for _, term := range terms {
		t.Roots = append(t.Roots, &Node{ID: term.ID, Name: term.Name})
	}
}

// SetChildren records the children of every node with the given ID and marks
// those nodes loaded. It returns the nodes that were added.
func (t *Tree) SetChildren(id string, terms []model.Term) []*Node {
	var added []*Node
	for _, n := range t.FindAll(id) {
		if n.Loaded {
			continue
		}
		n.Loaded = true
		n.Children = nil
		if len(terms) == 0 {
			n.HasChildren = ChildrenNo
			n.Expanded = false
			continue
		}
		n.HasChildren = ChildrenYes
		for _, term := range terms {
			child := &Node{ID: term.ID, Name: term.Name, Depth: n.Depth + 1, Parent: n}
			n.Children = append(n.Children, child)
			added = append(added, child)
		}
	}
	return added
}

// SetProbe records whether a node has children without loading them.
func (t *Tree) SetProbe(id string, has bool) {
	state := ChildrenNo
	if has {
		state = ChildrenYes
	}
	for _, n := range t.FindAll(id) {
		if !n.Loaded {
			n.HasChildren = state
		}
	}
}

// Toggle opens or closes a node. It reports whether the node's children still
// have to be fetched.
func (t *Tree) Toggle(n *Node) (needsLoad bool) {
	if n == nil || !n.Expandable() {
		return false
	}
	if n.Expanded {
		n.Expanded = false
		return false
	}
	n.Expanded = true
	return !n.Loaded
}

// Collapse closes a node. Collapsing a closed node moves to its parent, which
// is returned.
func (t *Tree) Collapse(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Expanded {
		n.Expanded = false
		return n
	}
	if n.Parent != nil {
		n.Parent.Expanded = false
		return n.Parent
	}
	return n
}

// Find returns the first node with the given ID in display order.
func (t *Tree) Find(id string) *Node {
	all := t.FindAll(id)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns every node with the given ID, depth first.
func (t *Tree) FindAll(id string) []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.ID == id {
				out = append(out, n)
			}
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return out
}

// Unprobed returns the IDs of nodes whose children are still unknown.
func (t *Tree) Unprobed(nodes []*Node) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, n := range nodes {
		if n.HasChildren != ChildrenUnknown || n.IsPlaceholder() || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		ids = append(ids, n.ID)
	}
	return ids
}

// Len is the number of nodes in the tree, visible or not.
func (t *Tree) Len() int {
	count := 0
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			count++
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return count
}
