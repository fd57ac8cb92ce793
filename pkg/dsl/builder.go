package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	tree  domain.Tree
	order []string
	nodes map[string]*NodeBuilder
	drugs []domain.DrugEntry
	pages []domain.InfoPage
}

// Tree creates a new tree builder.
func Tree(id, title string) *Builder {
	return &Builder{
		tree:  domain.Tree{ID: id, Title: title},
		nodes: make(map[string]*NodeBuilder),
	}
}

// Subtitle sets the tree subtitle.
func (b *Builder) Subtitle(s string) *Builder {
	b.tree.Subtitle = s
	return b
}

// Category sets the tree category.
func (b *Builder) Category(c string) *Builder {
	b.tree.Category = c
	return b
}

// Version sets the content version.
func (b *Builder) Version(v string) *Builder {
	b.tree.Version = v
	return b
}

// Modules sets the labels of modules 1..n.
func (b *Builder) Modules(labels ...string) *Builder {
	b.tree.ModuleLabels = labels
	return b
}

// Cite appends an entry to the citation table.
func (b *Builder) Cite(num int, text string) *Builder {
	b.tree.Citations = append(b.tree.Citations, domain.Citation{Num: num, Text: text})
	return b
}

// Entry sets the entry node. Defaults to the first node added.
func (b *Builder) Entry(id string) *Builder {
	b.tree.EntryNodeID = id
	return b
}

// Drug adds a drug monograph to the built library.
func (b *Builder) Drug(d domain.DrugEntry) *Builder {
	b.drugs = append(b.drugs, d)
	return b
}

// InfoPage adds an info page to the built library.
func (b *Builder) InfoPage(p domain.InfoPage) *Builder {
	b.pages = append(b.pages, p)
	return b
}

// Add creates a new node in the tree.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.DecisionNode{ID: id, Module: 1},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Tree returns the tree with nodes in the order they were added.
func (b *Builder) Tree() (domain.Tree, error) {
	t := b.tree
	t.Nodes = make([]domain.DecisionNode, 0, len(b.order))

	var errs []error
	for _, id := range b.order {
		nb := b.nodes[id]
		if nb.node.Type == "" {
			errs = append(errs, fmt.Errorf("node %s: type not set", id))
		}
		errs = append(errs, nb.errs...)
		t.Nodes = append(t.Nodes, nb.Build())
	}
	if t.EntryNodeID == "" && len(b.order) > 0 {
		t.EntryNodeID = b.order[0]
	}
	if err := errors.Join(errs...); err != nil {
		return domain.Tree{}, err
	}
	return t, nil
}

// Library returns the tree together with any drugs and info pages added.
func (b *Builder) Library() (domain.Library, error) {
	t, err := b.Tree()
	if err != nil {
		return domain.Library{}, err
	}
	return domain.Library{
		Trees:     []domain.Tree{t},
		Drugs:     b.drugs,
		InfoPages: b.pages,
	}, nil
}

// Build compiles the library into an in-memory content store.
func (b *Builder) Build() (*memory.Content, error) {
	lib, err := b.Library()
	if err != nil {
		return nil, err
	}

	content, err := memory.NewContent(lib)
	if err != nil {
		return nil, fmt.Errorf("failed to build content store: %w", err)
	}
	return content, nil
}
