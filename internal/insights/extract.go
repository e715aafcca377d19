package insights

import (
	"strings"
)

// DefaultTitle is used when no title can be found in the model output.
const DefaultTitle = "E-commerce Insights Report"

const (
	titleScanLines = 5
	maxTitleLength = 100
)

// Report is the structured form of a generated answer.
type Report struct {
	Title           string `json:"title"`
	Recommendations string `json:"recommendations"`
}

// ReportExtractor turns free model text into a Report. Implementations must
// always return a non-empty Title.
type ReportExtractor interface {
	Extract(text string) Report
}

// HeadingExtractor drops any preamble before the report body and picks a
// title from the opening lines.
//
// The body starts at the first line mentioning "Executive Summary"
// (case-insensitive) or, failing that, at the first markdown heading. When
// neither exists the whole text is kept. The title is the first heading, or
// the first short line mentioning "report" or "analysis", among the first
// five non-empty lines, with markdown markers removed. The Executive Summary
// heading itself is never used as a title.
type HeadingExtractor struct{}

func (HeadingExtractor) Extract(text string) Report {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return Report{
		Title:           findTitle(text),
		Recommendations: strings.TrimSpace(cutPreamble(text)),
	}
}

func cutPreamble(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "executive summary") {
			return strings.Join(lines[i:], "\n")
		}
	}
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return strings.Join(lines[i:], "\n")
		}
	}
	return text
}

func findTitle(text string) string {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if seen++; seen > titleScanLines {
			break
		}

		heading := strings.HasPrefix(line, "#")
		lower := strings.ToLower(line)
		mentions := strings.Contains(lower, "report") || strings.Contains(lower, "analysis")
		if !heading && !(mentions && len(line) <= maxTitleLength) {
			continue
		}

		title := cleanTitle(line)
		if title == "" || strings.EqualFold(title, "executive summary") {
			continue
		}
		return title
	}
	return DefaultTitle
}

func cleanTitle(line string) string {
	line = strings.NewReplacer("#", "", "*", "").Replace(line)
	line = strings.TrimSpace(line)
	return strings.TrimSuffix(line, ":")
}
