package ports

import (
	"context"

	"github.com/aretw0/consult/pkg/domain"
)

// ContentStore is the read-only lookup the engine and renderer depend on.
// Implementations are loaded once and shared; every method must be safe for concurrent use.
//
// Not-found errors wrap domain.ErrTreeNotFound, domain.ErrNodeNotFound,
// domain.ErrDrugNotFound, domain.ErrInfoPageNotFound or domain.ErrCalculatorNotFound.
type ContentStore interface {
	GetTree(treeID string) (*domain.Tree, error)
	GetNode(treeID, nodeID string) (*domain.DecisionNode, error)
	GetEntryNode(treeID string) (*domain.DecisionNode, error)
	GetDrug(drugID string) (*domain.DrugEntry, error)
	GetInfoPage(pageID string) (*domain.InfoPage, error)
	GetCalculator(calcID string) (*domain.Calculator, error)

	// ListTrees returns tree metadata ordered by id.
	ListTrees() ([]domain.TreeMeta, error)

	// ListCalculators returns calculator metadata ordered by title.
	ListCalculators() ([]domain.CalculatorMeta, error)
}

// Watchable defines an interface for content sources that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying content changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
