package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Source reads a content library from YAML documents in a filesystem.
//
// Each *.yaml or *.yml file holds one of:
//   - a tree (a mapping with a "nodes" key),
//   - a drug table (a mapping with a "drugs" key),
//   - an info page table (a mapping with an "infoPages" key),
//   - a calculator table (a mapping with a "calculators" key).
//
// Directory sources may also hold info pages as Markdown documents under
// pages/; see PageDir.
//
// Unknown keys are rejected so that typos in authored content surface at load time.
type Source struct {
	fsys fs.FS
	dir  string
}

// NewSource creates a source over an arbitrary filesystem (e.g. the embedded bundle).
func NewSource(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

// NewDirSource creates a source over a directory on disk. Directory sources are watchable.
func NewDirSource(dir string) *Source {
	return &Source{fsys: os.DirFS(dir), dir: dir}
}

// Dir returns the directory backing the source, or "" for non-disk sources.
func (s *Source) Dir() string {
	return s.dir
}

// Load reads the library and indexes it into an immutable content store.
func (s *Source) Load() (*memory.Content, error) {
	lib, err := s.Library()
	if err != nil {
		return nil, err
	}
	return memory.NewContent(lib)
}

// Library reads and decodes every YAML document of the source, in lexical path
// order, followed by the Markdown pages of a directory source.
func (s *Source) Library() (domain.Library, error) {
	var lib domain.Library

	paths, err := s.documents()
	if err != nil {
		return lib, err
	}

	for _, p := range paths {
		raw, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			return lib, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if err := decodeDocument(raw, &lib); err != nil {
			return lib, fmt.Errorf("%s: %w", p, err)
		}
	}

	pages, err := s.pages(context.Background())
	if err != nil {
		return lib, fmt.Errorf("%s: %w", PageDir, err)
	}
	lib.InfoPages = append(lib.InfoPages, pages...)

	if len(paths) == 0 && len(pages) == 0 {
		return lib, fmt.Errorf("no content documents found")
	}
	return lib, nil
}

func (s *Source) documents() ([]string, error) {
	var out []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		switch path.Ext(p) {
		case ".yaml", ".yml":
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func decodeDocument(raw []byte, lib *domain.Library) error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}

	switch {
	case doc["nodes"] != nil:
		var t domain.Tree
		if err := decode(doc, &t); err != nil {
			return err
		}
		lib.Trees = append(lib.Trees, t)
	case doc["drugs"] != nil || doc["infoPages"] != nil || doc["calculators"] != nil:
		var part domain.Library
		if err := decode(doc, &part); err != nil {
			return err
		}
		lib.Drugs = append(lib.Drugs, part.Drugs...)
		lib.InfoPages = append(lib.InfoPages, part.InfoPages...)
		lib.Calculators = append(lib.Calculators, part.Calculators...)
	default:
		return fmt.Errorf("unrecognized document: expected a tree, drugs, infoPages or calculators")
	}
	return nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return nil
}
