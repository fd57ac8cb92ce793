package domain

// Citation is one entry of an evidence table.
type Citation struct {
	Num  int    `json:"num" yaml:"num" mapstructure:"num"`
	Text string `json:"text" yaml:"text" mapstructure:"text"`
}

// Tree is a named, self-contained graph of nodes sharing one entry point and one citation list.
type Tree struct {
	ID           string         `json:"id" yaml:"id" mapstructure:"id"`
	Title        string         `json:"title" yaml:"title" mapstructure:"title"`
	Subtitle     string         `json:"subtitle,omitempty" yaml:"subtitle,omitempty" mapstructure:"subtitle"`
	Category     string         `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
	Version      string         `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	EntryNodeID  string         `json:"entryNodeId" yaml:"entryNodeId" mapstructure:"entryNodeId"`
	ModuleLabels []string       `json:"moduleLabels,omitempty" yaml:"moduleLabels,omitempty" mapstructure:"moduleLabels"`
	Citations    []Citation     `json:"citations,omitempty" yaml:"citations,omitempty" mapstructure:"citations"`
	Nodes        []DecisionNode `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
}

// TreeMeta is the listing view of a tree.
type TreeMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Category    string `json:"category,omitempty"`
	Version     string `json:"version,omitempty"`
	EntryNodeID string `json:"entryNodeId"`
	NodeCount   int    `json:"nodeCount"`
}

// Meta returns the listing view of the tree.
func (t *Tree) Meta() TreeMeta {
	return TreeMeta{
		ID:          t.ID,
		Title:       t.Title,
		Subtitle:    t.Subtitle,
		Category:    t.Category,
		Version:     t.Version,
		EntryNodeID: t.EntryNodeID,
		NodeCount:   len(t.Nodes),
	}
}

// Citation looks up a citation entry by its number.
func (t *Tree) Citation(num int) (Citation, bool) {
	for _, c := range t.Citations {
		if c.Num == num {
			return c, true
		}
	}
	return Citation{}, false
}

// ModuleLabel returns the label of a 1-based module, or "" when the tree does not name it.
func (t *Tree) ModuleLabel(module int) string {
	if module < 1 || module > len(t.ModuleLabels) {
		return ""
	}
	return t.ModuleLabels[module-1]
}

// TotalModules is the highest module number used by any node.
func (t *Tree) TotalModules() int {
	max := len(t.ModuleLabels)
	for i := range t.Nodes {
		if t.Nodes[i].Module > max {
			max = t.Nodes[i].Module
		}
	}
	return max
}

// Node looks up a node of the tree by id.
func (t *Tree) Node(id string) (*DecisionNode, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}
