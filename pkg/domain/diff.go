package domain

// SessionDiff represents the changes between two session values.
// It is serialized to JSON for partial updates on SSE clients.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentNodeID *string `json:"current_node_id,omitempty"`

	// Answers contains only changed or added keys. Removed keys carry an empty string.
	Answers map[string]string `json:"answers,omitempty"`

	History *HistoryDelta `json:"history,omitempty"`

	// Restarted is set when StartedAt moved, i.e. the session was reset.
	Restarted bool `json:"restarted,omitempty"`
}

// HistoryDelta represents changes to the history stack.
// Appended is used for forward moves; Truncated for back and rewind.
type HistoryDelta struct {
	Appended  []string `json:"appended,omitempty"`
	Truncated *int     `json:"truncated_to,omitempty"`
}

// Diff calculates the difference between oldSess and newSess.
// If oldSess is nil, the diff represents the entire newSess (initial load).
// It returns nil when nothing changed.
func Diff(oldSess, newSess *TreeSession) *SessionDiff {
	if newSess == nil {
		return nil
	}

	diff := &SessionDiff{SessionID: newSess.ID}

	if oldSess == nil || oldSess.CurrentNodeID != newSess.CurrentNodeID {
		id := newSess.CurrentNodeID
		diff.CurrentNodeID = &id
	}
	if oldSess != nil && !oldSess.StartedAt.Equal(newSess.StartedAt) {
		diff.Restarted = true
	}
	diff.Answers = diffAnswers(oldSess, newSess)
	diff.History = diffHistory(oldSess, newSess)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old, new *TreeSession) map[string]string {
	delta := make(map[string]string)
	if old == nil {
		for k, v := range new.Answers {
			delta[k] = v
		}
	} else {
		for k, v := range new.Answers {
			if ov, ok := old.Answers[k]; !ok || ov != v {
				delta[k] = v
			}
		}
		for k := range old.Answers {
			if _, ok := new.Answers[k]; !ok {
				delta[k] = ""
			}
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffHistory(old, new *TreeSession) *HistoryDelta {
	if old == nil {
		if len(new.History) == 0 {
			return nil
		}
		return &HistoryDelta{Appended: append([]string(nil), new.History...)}
	}

	oldLen, newLen := len(old.History), len(new.History)
	common := 0
	for common < oldLen && common < newLen && old.History[common] == new.History[common] {
		common++
	}
	if common == oldLen && common == newLen {
		return nil
	}

	delta := &HistoryDelta{}
	if common < oldLen {
		n := common
		delta.Truncated = &n
	}
	if common < newLen {
		delta.Appended = append([]string(nil), new.History[common:]...)
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil &&
		!d.Restarted &&
		len(d.Answers) == 0 &&
		d.History == nil
}
