package inference

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"resume-importer/internal/resume"
)

// Category is a named keyword list. Its name matches a resume.TechnicalSkills
// category (frontend, backend, databases, cloud, tools, other).
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Catalog is an ordered list of skill categories.
type Catalog []Category

// DefaultCatalog returns the built-in technical skill keywords.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "frontend", Keywords: []string{"React", "Vue", "Angular", "JavaScript", "TypeScript", "HTML", "CSS"}},
		{Name: "backend", Keywords: []string{"Node.js", "Express", "Django", "Flask", "Spring", "Laravel"}},
		{Name: "databases", Keywords: []string{"MongoDB", "PostgreSQL", "MySQL", "Redis", "SQLite"}},
		{Name: "cloud", Keywords: []string{"AWS", "Azure", "GCP", "Docker", "Kubernetes"}},
		{Name: "tools", Keywords: []string{"Git", "Jenkins", "Webpack", "Jest", "Figma"}},
	}
}

// ErrInvalidCatalog is returned for catalog files that cannot be used.
var ErrInvalidCatalog = errors.New("invalid skills catalog")

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCatalog reads a YAML catalog file:
//
//	categories:
//	  - name: frontend
//	    keywords: [React, Svelte]
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skills catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML catalog. Unknown keys, unknown
// category names and empty catalogs are rejected. Blank keywords are dropped.
func ParseCatalog(raw []byte) (Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	var probe resume.TechnicalSkills
	out := make(Catalog, 0, len(file.Categories))
	for _, cat := range file.Categories {
		cat.Name = strings.ToLower(strings.TrimSpace(cat.Name))
		if probe.Category(cat.Name) == nil {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidCatalog, cat.Name)
		}
		keywords := cat.Keywords[:0]
		for _, kw := range cat.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		cat.Keywords = keywords
		out = append(out, cat)
	}
	return out, nil
}
