package ats

import (
	"strings"
	"unicode/utf8"

	"resume-importer/internal/resume"
)

// Check is one weighted item of the applicant tracking system checklist.
type Check struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
	Passed bool   `json:"passed"`
}

// Report is the score of a résumé document.
type Report struct {
	Score  int      `json:"score"`
	Status string   `json:"status"`
	Checks []Check  `json:"checks"`
	Tips   []string `json:"tips"`
}

const (
	StatusExcellent = "Excellent"
	StatusGood      = "Good"
	StatusFair      = "Fair"
	StatusNeedsWork = "Needs Work"

	// TipsBelow is the score under which improvement tips are reported.
	TipsBelow = 80

	minSummaryRunes    = 100
	minTechnicalSkills = 5
)

type rule struct {
	id     string
	label  string
	weight int
	tip    string
	passed func(d resume.ResumeData) bool
}

var rules = []rule{
	{
		id: "contact", label: "Contact Information Complete", weight: 15,
		tip: "Complete all contact information",
		passed: func(d resume.ResumeData) bool {
			p := d.PersonalInfo
			return notBlank(p.FullName) && notBlank(p.Email) && notBlank(p.Phone)
		},
	},
	{
		id: "summary", label: "Professional Summary Present", weight: 15,
		tip: "Add a detailed professional summary (100+ chars)",
		passed: func(d resume.ResumeData) bool {
			return utf8.RuneCountInString(d.PersonalInfo.Summary) >= minSummaryRunes
		},
	},
	{
		id: "experience", label: "Work Experience Added", weight: 25,
		tip:    "Add work experience entries with detailed achievements",
		passed: func(d resume.ResumeData) bool { return len(d.Experience) > 0 },
	},
	{
		id: "skills", label: "Technical Skills Listed", weight: 15,
		tip: "List at least 5 technical skills",
		passed: func(d resume.ResumeData) bool {
			return len(d.Skills.Technical.Flatten()) >= minTechnicalSkills
		},
	},
	{
		id: "education", label: "Education Information", weight: 10,
		tip:    "Add education information",
		passed: func(d resume.ResumeData) bool { return len(d.Education) > 0 },
	},
	{
		id: "projects", label: "Projects Showcased", weight: 12,
		tip:    "Showcase key projects with technologies",
		passed: func(d resume.ResumeData) bool { return len(d.Projects) > 0 },
	},
	{
		id: "certificates", label: "Relevant Certifications", weight: 8,
		tip:    "Add relevant certifications",
		passed: func(d resume.ResumeData) bool { return len(d.Certificates) > 0 },
	},
}

// Score evaluates d against the checklist. The weights add up to 100.
func Score(d resume.ResumeData) Report {
	report := Report{
		Checks: make([]Check, 0, len(rules)),
		Tips:   []string{},
	}
	var failedTips []string
	for _, r := range rules {
		ok := r.passed(d)
		report.Checks = append(report.Checks, Check{ID: r.id, Label: r.label, Weight: r.weight, Passed: ok})
		if ok {
			report.Score += r.weight
			continue
		}
		failedTips = append(failedTips, r.tip)
	}
	report.Status = StatusFor(report.Score)
	if report.Score < TipsBelow {
		report.Tips = append(report.Tips, failedTips...)
	}
	return report
}

// StatusFor maps a score to its label.
func StatusFor(score int) string {
	switch {
	case score >= 80:
		return StatusExcellent
	case score >= 60:
		return StatusGood
	case score >= 40:
		return StatusFair
	default:
		return StatusNeedsWork
	}
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
