package inference

import (
	"strings"

	"resume-importer/internal/resume"
)

// Engine infers personal-info fields and technical skills from extracted text.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	Catalog Catalog
}

// NewEngine returns an Engine using catalog, or DefaultCatalog when catalog is empty.
func NewEngine(catalog Catalog) *Engine {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Engine{Catalog: catalog}
}

// Infer builds a record from text. Fields no probe matches stay empty and every
// collection is initialized, so a text without any recognizable data yields New().
func (e *Engine) Infer(text string) resume.ResumeData {
	d := resume.New()
	info := &d.PersonalInfo

	setIfMatched(&info.Email, FirstMatch(text, emailProbes...))
	setIfMatched(&info.Phone, FirstMatch(text, phoneProbes...))
	setIfMatched(&info.FullName, FirstMatch(text, nameProbes...))
	setIfMatched(&info.Location, FirstMatch(text, locationProbes...))
	setIfMatched(&info.LinkedIn, FirstMatch(text, linkedinProbes...))
	setIfMatched(&info.GitHub, FirstMatch(text, githubProbes...))
	setIfMatched(&info.Portfolio, FirstMatch(text, portfolioProbes...))

	if r := FirstMatch(text, summaryProbes...); r.Matched {
		info.Summary = truncateRunes(strings.TrimSpace(r.Value), summaryMaxRunes)
	}

	catalog := e.catalog()
	lower := strings.ToLower(text)
	for _, cat := range catalog {
		dst := d.Skills.Technical.Category(cat.Name)
		if dst == nil {
			continue
		}
		for _, kw := range cat.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				*dst = append(*dst, kw)
			}
		}
	}
	return d
}

func (e *Engine) catalog() Catalog {
	if e == nil || len(e.Catalog) == 0 {
		return DefaultCatalog()
	}
	return e.Catalog
}

func setIfMatched(dst *string, r Result) {
	if r.Matched {
		*dst = r.Value
	}
}
