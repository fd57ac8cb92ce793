package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/consult/pkg/domain"
)

// Content implements ports.ContentStore over immutable in-memory tables.
// It is built once and never mutated, so it is safe for concurrent use without locking.
// Lookups return shared pointers that callers must treat as read-only.
type Content struct {
	trees     map[string]*domain.Tree
	nodes     map[string]map[string]*domain.DecisionNode
	drugs     map[string]*domain.DrugEntry
	pages     map[string]*domain.InfoPage
	calcs     map[string]*domain.Calculator
	metas     []domain.TreeMeta
	calcMetas []domain.CalculatorMeta
}

// NewContent indexes a deep copy of lib, so later changes to lib never reach the store.
// It rejects structurally broken content: duplicate ids, unknown node types and
// trees whose entry node does not exist. Dangling edges are left for the engine
// and the validator to report.
func NewContent(lib domain.Library) (*Content, error) {
	c := &Content{
		trees: make(map[string]*domain.Tree, len(lib.Trees)),
		nodes: make(map[string]map[string]*domain.DecisionNode, len(lib.Trees)),
		drugs: make(map[string]*domain.DrugEntry, len(lib.Drugs)),
		pages: make(map[string]*domain.InfoPage, len(lib.InfoPages)),
		calcs: make(map[string]*domain.Calculator, len(lib.Calculators)),
	}

	for i := range lib.Trees {
		t := lib.Trees[i].Clone()
		if t.ID == "" {
			return nil, fmt.Errorf("tree %d: missing id", i)
		}
		if _, dup := c.trees[t.ID]; dup {
			return nil, fmt.Errorf("tree %s: duplicate id", t.ID)
		}

		idx := make(map[string]*domain.DecisionNode, len(t.Nodes))
		for j := range t.Nodes {
			n := &t.Nodes[j]
			if n.ID == "" {
				return nil, fmt.Errorf("tree %s: node %d: missing id", t.ID, j)
			}
			if _, dup := idx[n.ID]; dup {
				return nil, fmt.Errorf("tree %s: node %s: duplicate id", t.ID, n.ID)
			}
			if _, err := domain.ParseNodeType(string(n.Type)); err != nil {
				return nil, fmt.Errorf("tree %s: node %s: %w", t.ID, n.ID, err)
			}
			idx[n.ID] = n
		}
		if _, ok := idx[t.EntryNodeID]; !ok {
			return nil, fmt.Errorf("tree %s: entry node %q: %w", t.ID, t.EntryNodeID, domain.ErrNodeNotFound)
		}

		c.trees[t.ID] = &t
		c.nodes[t.ID] = idx
		c.metas = append(c.metas, t.Meta())
	}
	sort.Slice(c.metas, func(i, j int) bool { return c.metas[i].ID < c.metas[j].ID })

	for i := range lib.Drugs {
		d := lib.Drugs[i].Clone()
		if _, dup := c.drugs[d.ID]; dup {
			return nil, fmt.Errorf("drug %s: duplicate id", d.ID)
		}
		c.drugs[d.ID] = &d
	}
	for i := range lib.InfoPages {
		p := lib.InfoPages[i].Clone()
		if _, dup := c.pages[p.ID]; dup {
			return nil, fmt.Errorf("info page %s: duplicate id", p.ID)
		}
		c.pages[p.ID] = &p
	}
	for i := range lib.Calculators {
		calc := lib.Calculators[i].Clone()
		if calc.ID == "" {
			return nil, fmt.Errorf("calculator %d: missing id", i)
		}
		if _, dup := c.calcs[calc.ID]; dup {
			return nil, fmt.Errorf("calculator %s: duplicate id", calc.ID)
		}
		c.calcs[calc.ID] = &calc
		c.calcMetas = append(c.calcMetas, calc.Meta())
	}
	sort.Slice(c.calcMetas, func(i, j int) bool {
		a, b := c.calcMetas[i], c.calcMetas[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})

	return c, nil
}

// MustContent is NewContent for fixtures; it panics on error.
func MustContent(lib domain.Library) *Content {
	c, err := NewContent(lib)
	if err != nil {
		panic(err)
	}
	return c
}

// GetTree returns the tree with the given id.
func (c *Content) GetTree(treeID string) (*domain.Tree, error) {
	t, ok := c.trees[treeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, treeID)
	}
	return t, nil
}

// GetNode returns a node of a tree.
func (c *Content) GetNode(treeID, nodeID string) (*domain.DecisionNode, error) {
	idx, ok := c.nodes[treeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, treeID)
	}
	n, ok := idx[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrNodeNotFound, treeID, nodeID)
	}
	return n, nil
}

// GetEntryNode returns the entry node of a tree.
func (c *Content) GetEntryNode(treeID string) (*domain.DecisionNode, error) {
	t, err := c.GetTree(treeID)
	if err != nil {
		return nil, err
	}
	return c.GetNode(treeID, t.EntryNodeID)
}

// GetDrug returns a drug monograph.
func (c *Content) GetDrug(drugID string) (*domain.DrugEntry, error) {
	d, ok := c.drugs[drugID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDrugNotFound, drugID)
	}
	return d, nil
}

// GetInfoPage returns an info page.
func (c *Content) GetInfoPage(pageID string) (*domain.InfoPage, error) {
	p, ok := c.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInfoPageNotFound, pageID)
	}
	return p, nil
}

// GetCalculator returns a risk calculator.
func (c *Content) GetCalculator(calcID string) (*domain.Calculator, error) {
	calc, ok := c.calcs[calcID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCalculatorNotFound, calcID)
	}
	return calc, nil
}

// ListCalculators returns calculator metadata ordered by title.
func (c *Content) ListCalculators() ([]domain.CalculatorMeta, error) {
	out := make([]domain.CalculatorMeta, len(c.calcMetas))
	copy(out, c.calcMetas)
	return out, nil
}

// ListTrees returns tree metadata ordered by id.
func (c *Content) ListTrees() ([]domain.TreeMeta, error) {
	out := make([]domain.TreeMeta, len(c.metas))
	copy(out, c.metas)
	return out, nil
}

// Drugs returns every drug id in sorted order.
func (c *Content) Drugs() []string {
	return sortedKeys(c.drugs)
}

// InfoPages returns every info page id in sorted order.
func (c *Content) InfoPages() []string {
	return sortedKeys(c.pages)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
