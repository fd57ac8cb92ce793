package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/consult/internal/presentation/graph"
	"github.com/aretw0/consult/internal/presentation/html"
	"github.com/aretw0/consult/internal/presentation/markdown"
	"github.com/aretw0/consult/internal/presentation/tui"
	"github.com/aretw0/consult/pkg/domain"
)

// ListTrees prints the trees of the library as a table.
func ListTrees(app *App, out io.Writer) error {
	trees, err := app.Engine.Content().ListTrees()
	if err != nil {
		return err
	}
	if len(trees) == 0 {
		fmt.Fprintln(out, "No trees found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tNODES")
	for _, t := range trees {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID, t.Title, t.Category, t.NodeCount)
	}
	return tw.Flush()
}

// PrintGraph writes the Mermaid flowchart of treeID, highlighting the path of
// sessionID when given.
func PrintGraph(ctx context.Context, app *App, treeID, sessionID string, out io.Writer) error {
	tree, err := app.Engine.Content().GetTree(treeID)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if sessionID != "" {
		sess, err := app.Engine.Sessions().Store().Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
		if sess.TreeID != treeID {
			return fmt.Errorf("session %q belongs to tree %q", sessionID, sess.TreeID)
		}
		overlay = graph.OverlayFromSession(sess)
	}

	fmt.Fprint(out, graph.GenerateMermaid(tree, overlay))
	return nil
}

// PrintDrug writes a drug monograph, styled when out is a terminal.
func PrintDrug(app *App, drugID, hint string, plain bool, out io.Writer) error {
	drug, err := app.Engine.Content().GetDrug(drugID)
	if err != nil {
		return err
	}
	return writeMarkdown(out, markdown.Drug(drug, hint), plain)
}

// Export renders a single node as Markdown or as a standalone HTML page.
func Export(ctx context.Context, app *App, treeID, nodeID string, asHTML bool, out io.Writer) error {
	view, err := app.Engine.Render(ctx, domain.NewSession(treeID, nodeID))
	if err != nil {
		return err
	}

	md := markdown.Node(view)
	if !asHTML {
		fmt.Fprint(out, md)
		return nil
	}

	page, err := html.Document(view.Title, md)
	if err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	fmt.Fprint(out, page)
	return nil
}

func writeMarkdown(out io.Writer, md string, plain bool) error {
	render := tui.PlainRenderer()
	if !plain && isTerminal(out) {
		r, err := tui.NewRenderer(terminalWidth(out))
		if err != nil {
			return err
		}
		render = r
	}
	text, err := render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)
	return nil
}
