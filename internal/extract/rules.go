// Package extract populates normalized invoice and contract records from raw
// document text using ordered regex rule tables: most specific pattern
// first, first match wins, typed defaults when nothing matches. Partial
// records beat dropped documents; validation surfaces the gaps later.
package extract

import (
	"regexp"
	"strings"
)

// defaultMaxTextLen caps exhibit text before any pattern runs, bounding
// regex work on adversarial input. Extractors can override it per config.
const defaultMaxTextLen = 50000

// rules is an ordered pattern table. Each entry captures the field value in
// group 1; evaluation stops at the first match.
type rules []*regexp.Regexp

func (rs rules) first(text string) (string, bool) {
	for _, re := range rs {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func (rs rules) firstOr(text, fallback string) string {
	if v, ok := rs.first(text); ok {
		return v
	}
	return fallback
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// normalizeText collapses noisy whitespace while keeping line breaks, and
// truncates to maxLen (defaultMaxTextLen when <= 0). Conservative:
// extraction rules are line-oriented.
func normalizeText(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultMaxTextLen
	}
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
