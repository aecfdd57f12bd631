package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileDiff(t *testing.T) {
	d := &FileDiff{
		Path:      "schema.prisma",
		Current:   "model A {\n  id String\n}\n",
		Generated: "model A {\n  id Int\n}\n\nmodel B {\n",
	}

	assert.True(t, d.Changed())
	assert.Equal(t, "1 lines changed, 1 added, 0 removed", d.Stats())
	want := "--- schema.prisma (on disk)\n" +
		"+++ schema.prisma (generated)\n" +
		"@@ Line 2 @@\n" +
		"-   id String\n" +
		"+   id Int\n" +
		"@@ Line 5 @@\n" +
		"+ model B {\n"
	assert.Equal(t, want, d.String(true))
}

func TestFileDiffUnchanged(t *testing.T) {
	d := &FileDiff{Path: "x", Current: "a\n", Generated: "a\n"}
	assert.False(t, d.Changed())
	assert.Empty(t, d.String(true))
	assert.Equal(t, "No changes", d.Stats())
}

func TestFileDiffCapsHunks(t *testing.T) {
	var current, generated strings.Builder
	for i := 0; i < maxDiffHunks+5; i++ {
		current.WriteString("a\n")
		generated.WriteString("b\n")
	}
	d := &FileDiff{Path: "x", Current: current.String(), Generated: generated.String()}

	out := d.String(true)
	assert.Equal(t, maxDiffHunks, strings.Count(out, "@@ Line"))
	assert.Contains(t, out, "@@ ... @@ (25 lines changed, 0 added, 0 removed)")
}
