package providers

import (
	"regexp"
	"strings"
)

// Minimal parser for the provider's tour content markup.
//
// The detail documents use a small, fixed markup dialect:
//
//   - presentation tags <p> <br> <b> <i> <em> <strong> <ul> <li> (stripped)
//   - a handful of HTML entities (&amp; &nbsp; &quot; &#39; &lt; &gt;)
//   - section headings of the form  <h3>Day 4: Cusco</h3>
//
// StripMarkup reduces a fragment to plain text; ExtractSectionTitle and
// ExtractPlaceName pull the two structured sub-fields we store. Extraction
// failure means "field absent", never an error: this parser is inherently
// fragile against upstream markup changes and must degrade quietly.

var (
	tagPattern      = regexp.MustCompile(`(?i)</?(p|br|b|i|em|strong|ul|li|h[1-6])\s*/?>`)
	headingPattern  = regexp.MustCompile(`(?i)<h[1-6]>\s*(.*?)\s*</h[1-6]>`)
	dayTitlePattern = regexp.MustCompile(`(?i)^day\s+\d+\s*[:\-]\s*(.+)$`)
	spacePattern    = regexp.MustCompile(`[ \t]+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

// StripMarkup removes the known tag set and decodes the known entities,
// collapsing runs of whitespace left behind by removed tags.
func StripMarkup(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, " ")
	text = entityReplacer.Replace(text)
	text = spacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ExtractSectionTitle returns the first heading's text, or "" when the
// fragment has no heading.
func ExtractSectionTitle(fragment string) string {
	m := headingPattern.FindStringSubmatch(fragment)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(entityReplacer.Replace(m[1]))
}

// ExtractPlaceName pulls the place name out of a day-section title like
// "Day 4: Cusco". Returns "" when the title does not follow the convention.
func ExtractPlaceName(sectionTitle string) string {
	m := dayTitlePattern.FindStringSubmatch(strings.TrimSpace(sectionTitle))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
