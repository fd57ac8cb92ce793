package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks recorded answers before they reach the store.
//
// A pattern matching a node id masks that node's whole answer. For input answers in the
// "name=value; name=value" form, a pattern matching a field name masks only that value.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, s *domain.TreeSession) error {
	// Clone so the in-memory session used by the caller keeps its answers.
	cloned := s.Clone()
	for nodeID, answer := range cloned.Answers {
		cloned.Answers[nodeID] = m.mask(nodeID, answer)
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.TreeSession, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) mask(nodeID, answer string) string {
	if m.matches(nodeID) {
		return Mask
	}
	if !strings.Contains(answer, "=") {
		return answer
	}

	parts := strings.Split(answer, "; ")
	for i, part := range parts {
		name, _, ok := strings.Cut(part, "=")
		if ok && m.matches(name) {
			parts[i] = name + "=" + Mask
		}
	}
	return strings.Join(parts, "; ")
}
