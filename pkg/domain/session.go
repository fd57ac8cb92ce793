package domain

import "time"

// TreeSession is the traversal state of one walk through one tree.
// Engine operations never mutate a session in place; they return a new value.
type TreeSession struct {
	// ID identifies the session for hosts that persist it. The engine itself does not need it.
	ID string

	TreeID        string
	CurrentNodeID string

	// History holds previously visited node ids, oldest first, excluding the current node.
	History []string

	// Answers maps a node id to the last value recorded at that node.
	Answers map[string]string

	StartedAt time.Time
}

// NewSession creates a session positioned on the entry node of a tree.
func NewSession(treeID, entryNodeID string) *TreeSession {
	return &TreeSession{
		TreeID:        treeID,
		CurrentNodeID: entryNodeID,
		History:       []string{},
		Answers:       make(map[string]string),
		StartedAt:     time.Now(),
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *TreeSession) Clone() *TreeSession {
	if s == nil {
		return nil
	}
	next := *s
	next.History = make([]string, len(s.History))
	copy(next.History, s.History)
	next.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	return &next
}

// CanGoBack reports whether there is a previous node to return to.
func (s *TreeSession) CanGoBack() bool {
	return len(s.History) > 0
}

// Snapshot is the wire/persistence format of a TreeSession.
type Snapshot struct {
	ID            string            `json:"id,omitempty"`
	TreeID        string            `json:"treeId"`
	CurrentNodeID string            `json:"currentNodeId"`
	History       []string          `json:"history"`
	Answers       map[string]string `json:"answers"`
	// StartedAt is a unix timestamp in milliseconds.
	StartedAt int64 `json:"startedAt"`
}

// Snapshot serializes the session.
func (s *TreeSession) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		ID:            c.ID,
		TreeID:        c.TreeID,
		CurrentNodeID: c.CurrentNodeID,
		History:       c.History,
		Answers:       c.Answers,
		StartedAt:     c.StartedAt.UnixMilli(),
	}
}

// Session converts the snapshot back into a session without validating it against content.
// Use the engine's Restore to resume a persisted session.
func (s Snapshot) Session() *TreeSession {
	sess := &TreeSession{
		ID:            s.ID,
		TreeID:        s.TreeID,
		CurrentNodeID: s.CurrentNodeID,
		History:       make([]string, len(s.History)),
		Answers:       make(map[string]string, len(s.Answers)),
		StartedAt:     time.UnixMilli(s.StartedAt),
	}
	copy(sess.History, s.History)
	for k, v := range s.Answers {
		sess.Answers[k] = v
	}
	return sess
}

// AnswerRecord is one recorded answer along the walked path.
type AnswerRecord struct {
	NodeID    string `json:"nodeId"`
	NodeTitle string `json:"nodeTitle"`
	Answer    string `json:"answer"`
}

// Progress locates the current node within the tree's modules.
type Progress struct {
	Module       int    `json:"module"`
	TotalModules int    `json:"totalModules"`
	Label        string `json:"label,omitempty"`
}
