package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromSession builds an overlay from a session's history and position.
func OverlayFromSession(s *domain.TreeSession) *GraphOverlay {
	if s == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedNodes: append([]string(nil), s.History...),
		CurrentNode:  s.CurrentNodeID,
	}
}

// GenerateMermaid produces a Mermaid flowchart of a tree.
// It applies semantic shapes:
// - Entry: ((Circle))
// - Question: {Rhombus}
// - Input: [/Parallelogram/]
// - Result: ([Stadium])
// - Info: [Rectangle]
// Nodes are grouped into one subgraph per module. Edges to missing nodes point at a
// placeholder styled as missing. Overlay styles (visited/current) are applied if provided.
func GenerateMermaid(tree *domain.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	modules, order := groupByModule(tree)
	for _, m := range order {
		indent := "    "
		if m > 0 {
			label := tree.ModuleLabel(m)
			if label == "" {
				label = fmt.Sprintf("Module %d", m)
			}
			fmt.Fprintf(&sb, "    subgraph module%d [\"%d. %s\"]\n", m, m, escape(label))
			indent = "        "
		}
		for _, node := range modules[m] {
			sb.WriteString(indent)
			sb.WriteString(nodeShape(tree, node))
			sb.WriteByte('\n')
		}
		if m > 0 {
			sb.WriteString("    end\n")
		}
	}

	missing := make(map[string]bool)
	var missingOrder []string
	var urgent []int
	edge := 0

	for i := range tree.Nodes {
		node := &tree.Nodes[i]
		from := sanitizeMermaidID(node.ID)

		link := func(target, label string) {
			if _, ok := tree.Node(target); !ok && !missing[target] {
				missing[target] = true
				missingOrder = append(missingOrder, target)
			}
			to := sanitizeMermaidID(target)
			if label == "" {
				fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
			} else {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(label), to)
			}
			edge++
		}

		for _, opt := range node.Options {
			if opt.Urgency == domain.UrgencyCritical {
				urgent = append(urgent, edge)
			}
			link(opt.Next, opt.Label)
		}
		if node.Next != "" {
			link(node.Next, "")
		}
	}

	if len(missingOrder) > 0 {
		sb.WriteString("\n    %% Missing targets\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range missingOrder {
			safeID := sanitizeMermaidID(id)
			fmt.Fprintf(&sb, "    %s[\"%s ⚠\"]\n", safeID, escape(id))
			fmt.Fprintf(&sb, "    class %s missing;\n", safeID)
		}
	}

	for _, idx := range urgent {
		fmt.Fprintf(&sb, "    linkStyle %d stroke:#c62828,stroke-width:2px;\n", idx)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" && id != overlay.CurrentNode {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func groupByModule(tree *domain.Tree) (map[int][]*domain.DecisionNode, []int) {
	out := make(map[int][]*domain.DecisionNode)
	var order []int
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		m := n.Module
		if m < 0 {
			m = 0
		}
		if _, ok := out[m]; !ok {
			order = append(order, m)
		}
		out[m] = append(out[m], n)
	}
	return out, order
}

func nodeShape(tree *domain.Tree, node *domain.DecisionNode) string {
	opener, closer := "[", "]"
	switch {
	case node.ID == tree.EntryNodeID:
		opener, closer = "((", "))"
	case node.Type == domain.NodeTypeQuestion:
		opener, closer = "{", "}"
	case node.Type == domain.NodeTypeInput:
		opener, closer = "[/", "/]"
	case node.Type == domain.NodeTypeResult:
		opener, closer = "([", "])"
	}

	label := node.Title
	if label == "" {
		label = node.ID
	}
	return fmt.Sprintf("%s%s\"%s\"%s", sanitizeMermaidID(node.ID), opener, escape(label), closer)
}

// escape replaces characters that break Mermaid quoted labels.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
