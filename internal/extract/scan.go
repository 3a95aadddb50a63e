package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Text-showing operators of uncompressed content streams: a literal string shown
// with Tj, an array shown with TJ, and a whole BT..ET text object.
var textOperators = []*regexp.Regexp{
	regexp.MustCompile(`\(([^)]+)\)\s*Tj`),
	regexp.MustCompile(`\[([^\]]+)\]\s*TJ`),
	regexp.MustCompile(`(?s)BT\s*([^E]*?)\s*ET`),
}

var (
	escapedControl = regexp.MustCompile(`\\[nrt]`)
	whitespaceRun  = regexp.MustCompile(`[\s\x{0B}\x{A0}]+`)
)

const minFragmentRunes = 2

type fragment struct {
	offset  int
	pattern int
	text    string
}

// ScanText recovers visible text from raw PDF bytes without parsing the document.
// Bytes are decoded one byte per character so arbitrary binary content never fails
// to decode. Fragments from every operator pattern are emitted in stream order.
func ScanText(data []byte) (string, error) {
	// windows-1252: 0x80-0x9F decode to typographic quotes and dashes.
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	content := string(decoded)

	var fragments []fragment
	for i, re := range textOperators {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			if loc[2] < 0 {
				continue
			}
			text := cleanFragment(content[loc[2]:loc[3]])
			if utf8.RuneCountInString(text) < minFragmentRunes {
				continue
			}
			fragments = append(fragments, fragment{offset: loc[0], pattern: i, text: text})
		}
	}

	sort.SliceStable(fragments, func(a, b int) bool {
		if fragments[a].offset != fragments[b].offset {
			return fragments[a].offset < fragments[b].offset
		}
		return fragments[a].pattern < fragments[b].pattern
	})

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, f.text)
	}
	text := strings.Join(parts, " ")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoReadableText
	}
	return text, nil
}

func cleanFragment(raw string) string {
	s := escapedControl.ReplaceAllString(raw, " ")
	s = strings.ReplaceAll(s, `\(`, "(")
	s = strings.ReplaceAll(s, `\)`, ")")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
