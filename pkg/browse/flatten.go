package browse

// Row is one visible line of the tree
type Row struct {
	Node   *Node
	Prefix string // ├─, └─ and │ guides
	IsLast bool
}

// Marker is the expand indicator for the row's node.
func (r Row) Marker() string {
	switch {
	case r.Node.IsPlaceholder():
		return " "
	case r.Node.Expanded:
		return "▾"
	case r.Node.HasChildren == ChildrenNo:
		return "•"
	case r.Node.HasChildren == ChildrenYes:
		return "▸"
	}
	return "·"
}

// Flatten returns the visible rows: every root, and the children of expanded
// nodes, in display order.
func (t *Tree) Flatten() []Row {
	var rows []Row
	for i, n := range t.Roots {
		isLast := i == len(t.Roots)-1
		prefix := "├─ "
		if isLast {
			prefix = "└─ "
		}
		rows = append(rows, Row{Node: n, Prefix: prefix, IsLast: isLast})
		if n.Expanded {
			rows = flattenChildren(rows, n, []bool{isLast})
		}
	}
	return rows
}

func flattenChildren(rows []Row, parent *Node, parentPath []bool) []Row {
	for i, child := range parent.Children {
		isLast := i == len(parent.Children)-1

		prefix := ""
		for _, wasLast := range parentPath {
			if wasLast {
				prefix += "   "
			} else {
				prefix += "│  "
			}
		}
		if isLast {
			prefix += "└─ "
		} else {
			prefix += "├─ "
		}

		rows = append(rows, Row{Node: child, Prefix: prefix, IsLast: isLast})

		if child.Expanded {
			newPath := append([]bool{}, parentPath...)
			newPath = append(newPath, isLast)
			rows = flattenChildren(rows, child, newPath)
		}
	}
	return rows
}

// IndexOf returns the row index of the node, or -1 when it is hidden.
func IndexOf(rows []Row, n *Node) int {
	for i, r := range rows {
		if r.Node == n {
			return i
		}
	}
	return -1
}
