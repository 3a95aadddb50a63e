package inference

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// Name candidates, most specific first. The line-start run joins words with
	// spaces or tabs only, so a name never continues onto the next line.
	nameLineStart    = regexp.MustCompile(`(?m)^([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`)
	nameWordPair     = regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+)(?:\s|$)`)
	nameCapitalBlock = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z\s]{2,30})(?:\n|\s{2,})`)

	locationPattern = regexp.MustCompile(
		`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*,[ \t]*[A-Z]{2}\b` +
			`|\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*[ \t]*,[ \t]*[A-Z][a-z]+`)

	// An @mention counts only when the @ does not sit inside an email address.
	linkedinPattern  = regexp.MustCompile(`(?i)(?:linkedin\.com/in/|(?:^|[^\w.%+-])@)([\w-]+)`)
	githubPattern    = regexp.MustCompile(`(?i)(?:github\.com/|@github/)([\w-]+)`)
	portfolioPattern = regexp.MustCompile(`(?i)(?:portfolio|website|site):\s*([\w.-]+\.[a-z]{2,})`)

	summaryLabeled  = regexp.MustCompile(`(?i)(?:summary|objective|profile|about)\s*:?\s*([^\n]{50,300})`)
	summarySentence = regexp.MustCompile(`(?m)^\s*([A-Z][^.!?]*[.!?](?:\s*[A-Z][^.!?]*[.!?])?)`)
)

const (
	nameMinRunes    = 4
	nameMaxRunes    = 49
	summaryMinRunes = 50
	summaryMaxRunes = 500
)

var (
	emailProbes = []Probe{captureProbe(emailPattern, 0)}
	phoneProbes = []Probe{captureProbe(phonePattern, 0)}
	nameProbes  = []Probe{
		lengthGate(captureProbe(nameLineStart, 1), nameMinRunes, nameMaxRunes),
		lengthGate(captureProbe(nameWordPair, 1), nameMinRunes, nameMaxRunes),
		lengthGate(captureProbe(nameCapitalBlock, 1), nameMinRunes, nameMaxRunes),
	}
	locationProbes  = []Probe{captureProbe(locationPattern, 0)}
	linkedinProbes  = []Probe{linkedinProbe}
	githubProbes    = []Probe{normalized(captureProbe(githubPattern, 1), "github.com/")}
	portfolioProbes = []Probe{captureProbe(portfolioPattern, 1)}
	summaryProbes   = []Probe{
		lengthGate(captureProbe(summaryLabeled, 1), summaryMinRunes, 0),
		lengthGate(captureProbe(summarySentence, 1), summaryMinRunes, 0),
	}
)

// linkedinProbe returns the first linkedin.com/in/ path or @handle. A handle
// directly followed by a slash (as in @github/name) is another site's mention.
func linkedinProbe(text string) Result {
	for _, loc := range linkedinPattern.FindAllStringSubmatchIndex(text, -1) {
		end := loc[3]
		if end < len(text) && text[end] == '/' && !strings.HasPrefix(strings.ToLower(text[loc[0]:end]), "linkedin.com/in/") {
			continue
		}
		return Matched("linkedin.com/in/" + text[loc[2]:end])
	}
	return NoMatch
}

func normalized(p Probe, prefix string) Probe {
	return func(text string) Result {
		r := p(text)
		if !r.Matched {
			return NoMatch
		}
		return Matched(prefix + r.Value)
	}
}
