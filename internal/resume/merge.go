package resume

import "strings"

// ApplyImport merges an imported record into base and returns the result.
// Imported personal-info fields overwrite base only when non-empty; photo settings
// always stay with base. Imported technical skills are appended to their category,
// skipping case-insensitive duplicates. Imported collections are appended.
func ApplyImport(base, imported ResumeData) ResumeData {
	out := clone(base)
	out.Normalize()

	p := &out.PersonalInfo
	in := imported.PersonalInfo
	overwrite(&p.FullName, in.FullName)
	overwrite(&p.Email, in.Email)
	overwrite(&p.Phone, in.Phone)
	overwrite(&p.Location, in.Location)
	overwrite(&p.LinkedIn, in.LinkedIn)
	overwrite(&p.Portfolio, in.Portfolio)
	overwrite(&p.GitHub, in.GitHub)
	overwrite(&p.Summary, in.Summary)

	t := &out.Skills.Technical
	t.Frontend = appendUnique(t.Frontend, imported.Skills.Technical.Frontend)
	t.Backend = appendUnique(t.Backend, imported.Skills.Technical.Backend)
	t.Databases = appendUnique(t.Databases, imported.Skills.Technical.Databases)
	t.Cloud = appendUnique(t.Cloud, imported.Skills.Technical.Cloud)
	t.Tools = appendUnique(t.Tools, imported.Skills.Technical.Tools)
	t.Other = appendUnique(t.Other, imported.Skills.Technical.Other)
	out.Skills.Soft = appendUnique(out.Skills.Soft, imported.Skills.Soft)
	out.Skills.Languages = appendUnique(out.Skills.Languages, imported.Skills.Languages)

	out.Experience = append(out.Experience, imported.Experience...)
	out.Education = append(out.Education, imported.Education...)
	out.Projects = append(out.Projects, imported.Projects...)
	out.Certificates = append(out.Certificates, imported.Certificates...)
	return out
}

func overwrite(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst)+len(src))
	for _, s := range dst {
		seen[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range src {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}

func clone(d ResumeData) ResumeData {
	out := d
	out.Experience = append([]Experience(nil), d.Experience...)
	for i := range out.Experience {
		out.Experience[i].Achievements = append([]string(nil), d.Experience[i].Achievements...)
	}
	out.Education = append([]Education(nil), d.Education...)
	out.Projects = append([]Project(nil), d.Projects...)
	for i := range out.Projects {
		out.Projects[i].Technologies = append([]string(nil), d.Projects[i].Technologies...)
	}
	out.Certificates = append([]Certificate(nil), d.Certificates...)
	t := d.Skills.Technical
	out.Skills.Technical = TechnicalSkills{
		Frontend:  append([]string(nil), t.Frontend...),
		Backend:   append([]string(nil), t.Backend...),
		Databases: append([]string(nil), t.Databases...),
		Cloud:     append([]string(nil), t.Cloud...),
		Tools:     append([]string(nil), t.Tools...),
		Other:     append([]string(nil), t.Other...),
	}
	out.Skills.Soft = append([]string(nil), d.Skills.Soft...)
	out.Skills.Languages = append([]string(nil), d.Skills.Languages...)
	return out
}
