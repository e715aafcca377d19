package insights

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingExtractorCorpus(t *testing.T) {
	tests := []struct {
		file       string
		wantTitle  string
		wantPrefix string
	}{
		{file: "preamble_heading.md", wantTitle: "Q2 Leasing Funnel Report", wantPrefix: "## Executive Summary"},
		{file: "bold_title.txt", wantTitle: "Customer Behavior Analysis - May 2025", wantPrefix: "Executive Summary:"},
		{file: "headings_only.md", wantTitle: "Key Findings", wantPrefix: "## Key Findings"},
		{file: "plain.txt", wantTitle: DefaultTitle, wantPrefix: "Conversion is low on desktop."},
		{file: "late_heading.md", wantTitle: DefaultTitle, wantPrefix: "# Storefront Report"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join("testdata", tt.file))
			require.NoError(t, err)

			got := HeadingExtractor{}.Extract(string(raw))
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.True(t, strings.HasPrefix(got.Recommendations, tt.wantPrefix), "recommendations start: %q", firstLine(got.Recommendations))
		})
	}
}

func TestHeadingExtractorEdgeCases(t *testing.T) {
	got := HeadingExtractor{}.Extract("")
	assert.Equal(t, DefaultTitle, got.Title)
	assert.Empty(t, got.Recommendations)

	got = HeadingExtractor{}.Extract("## EXECUTIVE SUMMARY\r\nAll good.\r\n")
	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, "## EXECUTIVE SUMMARY\nAll good.", got.Recommendations)

	long := strings.Repeat("report ", 20)
	got = HeadingExtractor{}.Extract(long + "\nbody")
	assert.Equal(t, DefaultTitle, got.Title, "long lines are not titles")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
