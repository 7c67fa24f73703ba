package report

import (
	"strings"
)

// Parse scans raw model output line by line and assigns content to the
// expected sections. A line containing an expected heading as a substring
// switches accumulation to that section; when a line could match several
// headings, the first match in the given section order wins. Text before the
// first recognized heading is discarded. Every expected section is always
// present in the result, mapped to the empty string when never matched.
func Parse(raw string, sections []string) map[string]string {
	out := make(map[string]string, len(sections))
	for _, s := range sections {
		out[s] = ""
	}

	var bodies = make(map[string][]string, len(sections))
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		if heading := matchHeading(line, sections); heading != "" {
			current = heading
			if rest := inlineBody(line, heading); rest != "" {
				bodies[current] = append(bodies[current], rest)
			}
			continue
		}
		if current != "" {
			bodies[current] = append(bodies[current], line)
		}
	}

	for name, lines := range bodies {
		out[name] = trimBlankLines(lines)
	}
	return out
}

// matchHeading returns the first section name contained in the line, in
// section order, or empty when none matches.
func matchHeading(line string, sections []string) string {
	for _, s := range sections {
		if strings.Contains(line, s) {
			return s
		}
	}
	return ""
}

// inlineBody extracts content following a "Heading: body" label on the
// heading line itself, stripping markdown emphasis and the label colon.
func inlineBody(line, heading string) string {
	idx := strings.Index(line, heading)
	rest := line[idx+len(heading):]
	rest = strings.TrimLeft(rest, " :*#")
	return strings.TrimSpace(rest)
}

// trimBlankLines joins body lines, dropping leading and trailing blank lines
// while keeping interior blank lines intact.
func trimBlankLines(lines []string) string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
