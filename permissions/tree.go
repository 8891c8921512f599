package permissions

// Node is one checkbox of the role editor tree.
type Node struct {
	Permission
	Checked  bool   `json:"checked"`
	Children []Node `json:"children,omitempty"`
}

// Tree lays out every section with its checked state. The areas of a
// section are only listed once the section itself is checked.
func (r *Registry) Tree(checked map[string]bool) []Node {
	nodes := make([]Node, 0, len(r.sections))
	for _, sec := range r.sections {
		n := Node{Permission: sec, Checked: checked[sec.Name]}
		if n.Checked {
			for _, area := range r.children[sec.Code] {
				n.Children = append(n.Children, Node{Permission: area, Checked: checked[area.Name]})
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// FullTree lists every section with all of its areas regardless of
// selection.
func (r *Registry) FullTree() []Node {
	nodes := make([]Node, 0, len(r.sections))
	for _, sec := range r.sections {
		n := Node{Permission: sec}
		for _, area := range r.children[sec.Code] {
			n.Children = append(n.Children, Node{Permission: area})
		}
		nodes = append(nodes, n)
	}
	return nodes
}
