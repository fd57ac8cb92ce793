package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/loam"
)

// PageDir is the subdirectory of a directory source holding info pages
// written as Markdown documents with YAML frontmatter.
const PageDir = "pages"

// PageMetadata is the frontmatter of a Markdown info page.
// The body is split into sections on "## " headings; DrugTables attaches a
// dosing table to the section with the matching heading.
type PageMetadata struct {
	ID         string                         `json:"id" mapstructure:"id"`
	Title      string                         `json:"title" mapstructure:"title"`
	Subtitle   string                         `json:"subtitle" mapstructure:"subtitle"`
	Shareable  bool                           `json:"shareable" mapstructure:"shareable"`
	Citations  []domain.Citation              `json:"citations" mapstructure:"citations"`
	DrugTables map[string][]domain.DrugDosing `json:"drugTables" mapstructure:"drugTables"`
}

// pages loads the Markdown info pages of a directory source through loam.
// Sources without a pages directory have none.
func (s *Source) pages(ctx context.Context) ([]domain.InfoPage, error) {
	if s.dir == "" {
		return nil, nil
	}
	dir, err := filepath.Abs(filepath.Join(s.dir, PageDir))
	if err != nil {
		return nil, fmt.Errorf("invalid page directory: %w", err)
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	repo, err := loam.Init(dir, loam.WithReadOnly(true), loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	typed := loam.NewTypedRepository[PageMetadata](repo)

	docs, err := typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	var out []domain.InfoPage
	seen := make(map[string]string, len(docs))
	for _, listed := range docs {
		if ext := filepath.Ext(listed.ID); ext != "" && ext != ".md" {
			continue
		}
		docID := trimExtension(listed.ID)
		doc, err := typed.Get(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", listed.ID, err)
		}

		page := pageFromMarkdown(docID, doc.Data, doc.Content)
		if prev, dup := seen[page.ID]; dup {
			return nil, fmt.Errorf("page %s: id %q already defined by %s", listed.ID, page.ID, prev)
		}
		seen[page.ID] = listed.ID
		out = append(out, page)
	}
	return out, nil
}

// pageFromMarkdown builds an info page from its frontmatter and Markdown body.
// A leading "# " line stands in for a missing title.
func pageFromMarkdown(docID string, meta PageMetadata, body string) domain.InfoPage {
	page := domain.InfoPage{
		ID:        meta.ID,
		Title:     meta.Title,
		Subtitle:  meta.Subtitle,
		Citations: meta.Citations,
		Shareable: meta.Shareable,
	}
	if page.ID == "" {
		page.ID = filepath.Base(docID)
	}

	var cur *domain.InfoSection
	var text []string
	flush := func() {
		b := strings.TrimSpace(strings.Join(text, "\n"))
		text = text[:0]
		if cur == nil && b == "" {
			return
		}
		if cur == nil {
			cur = &domain.InfoSection{}
		}
		cur.Body = b
		cur.DrugTable = meta.DrugTables[cur.Heading]
		page.Sections = append(page.Sections, *cur)
		cur = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "# ") && page.Title == "" && cur == nil && len(page.Sections) == 0:
			page.Title = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "## "):
			flush()
			cur = &domain.InfoSection{Heading: strings.TrimSpace(line[3:])}
		default:
			text = append(text, line)
		}
	}
	flush()
	return page
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
