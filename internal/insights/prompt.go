// Package insights asks a text-generation model for a report on aggregated
// store metrics and extracts a titled report from its answer.
package insights

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Metrics is the pre-aggregated insightsData object posted by the dashboard.
// Its shape is owned by the aggregation side; any JSON object is accepted.
type Metrics map[string]any

const systemPrompt = "You are a senior e-commerce analyst for a device-leasing store. " +
	"Write clear, actionable reports in markdown."

// BuildPrompt renders m into the user prompt. Keys are emitted in sorted
// order at every level, so equal metrics always produce the same prompt.
func BuildPrompt(m Metrics) string {
	var b strings.Builder
	b.WriteString("Analyze the following store metrics and write an insights report.\n\n")
	b.WriteString("## Metrics\n")
	writeValue(&b, map[string]any(m), 0)
	b.WriteString("\n## Instructions\n")
	b.WriteString("Start with a short report title as a markdown heading, then an \"Executive Summary\" section.\n")
	b.WriteString("Follow with Key Findings, Conversion Funnel, Customer Segments and Recommendations sections.\n")
	b.WriteString("Give 3 to 5 concrete recommendations, each tied to a metric above.\n")
	return b.String()
}

func writeValue(b *strings.Builder, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := val[k]
			if isScalar(child) {
				fmt.Fprintf(b, "%s- %s: %s\n", indent, k, scalar(child))
				continue
			}
			fmt.Fprintf(b, "%s- %s:\n", indent, k)
			writeValue(b, child, depth+1)
		}
	case []any:
		for _, item := range val {
			if isScalar(item) {
				fmt.Fprintf(b, "%s- %s\n", indent, scalar(item))
				continue
			}
			fmt.Fprintf(b, "%s-\n", indent)
			writeValue(b, item, depth+1)
		}
	default:
		fmt.Fprintf(b, "%s- %s\n", indent, scalar(val))
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "n/a"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
