package narrative

import (
	"regexp"
	"strings"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

// DefaultTitle names the single section produced when no heading is detected.
const DefaultTitle = "Analysis"

var (
	headingMarker = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	inlineHeading = regexp.MustCompile(`[ \t]#{1,6}[ \t]+(\p{Lu})`)
	boldMarker    = regexp.MustCompile(`\*\*`)
	asterisk      = regexp.MustCompile(`\*`)
	bulletMarker  = regexp.MustCompile(`(?m)^\s*[-•]\s+`)

	// A body line mentioning one of the keywords is also treated as a heading.
	headingLine = regexp.MustCompile(`(?i)^\d+\.|personality|character|strength|talent|growth|guidance|advice`)
)

// Sanitize strips the markdown artifacts models tend to emit. Passes repeat
// until nothing changes, so sanitizing sanitized text is a no-op.
func Sanitize(text string) string {
	for {
		next := sanitizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func sanitizeOnce(text string) string {
	text = headingMarker.ReplaceAllString(text, "")
	text = inlineHeading.ReplaceAllString(text, " ${1}")
	text = boldMarker.ReplaceAllString(text, "")
	text = asterisk.ReplaceAllString(text, "")
	text = bulletMarker.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// IsHeading reports whether a line opens a new section.
func IsHeading(line string) bool {
	return headingLine.MatchString(line)
}

// Structure sanitizes raw and groups its lines into titled sections.
// Lines before the first heading are dropped. When no heading exists at all,
// the unsanitized input is returned as the only paragraph of an "Analysis" section.
func Structure(raw string) []bazi.Section {
	sections := Segment(Sanitize(raw))
	if len(sections) == 0 {
		return []bazi.Section{{Title: DefaultTitle, Paragraphs: []string{raw}}}
	}
	return sections
}

// Segment splits already sanitized text into sections without the fallback.
func Segment(text string) []bazi.Section {
	var (
		sections []bazi.Section
		current  *bazi.Section
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if IsHeading(line) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &bazi.Section{Title: line, Paragraphs: []string{}}
			continue
		}
		if current != nil {
			current.Paragraphs = append(current.Paragraphs, line)
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}
