package ui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// maxDiffHunks caps the hunks String prints
const maxDiffHunks = 20

// FileDiff is the line difference between a file on disk and the content
// the compiler would write to it.
type FileDiff struct {
	Path      string
	Current   string
	Generated string
}

// Changed reports whether the file differs from the generated content
func (d *FileDiff) Changed() bool {
	return d.Current != d.Generated
}

// lines pairs up the lines of both sides, padding the shorter one with ""
func (d *FileDiff) lines() (current, generated []string) {
	current = strings.Split(d.Current, "\n")
	generated = strings.Split(d.Generated, "\n")
	n := max(len(current), len(generated))
	for len(current) < n {
		current = append(current, "")
	}
	for len(generated) < n {
		generated = append(generated, "")
	}
	return current, generated
}

// String returns a line-by-line diff, "-" for the file on disk and "+" for
// the generated content.
func (d *FileDiff) String(noColor bool) string {
	if !d.Changed() {
		return ""
	}

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	if noColor {
		red.DisableColor()
		green.DisableColor()
		cyan.DisableColor()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s (on disk)\n+++ %s (generated)\n", d.Path, d.Path)

	current, generated := d.lines()
	hunks := 0
	for i := range current {
		if current[i] == generated[i] {
			continue
		}
		if hunks == maxDiffHunks {
			cyan.Fprintf(&buf, "@@ ... @@ (%s)\n", d.Stats())
			break
		}
		hunks++
		cyan.Fprintf(&buf, "@@ Line %d @@\n", i+1)
		if current[i] != "" {
			red.Fprintf(&buf, "- %s\n", current[i])
		}
		if generated[i] != "" {
			green.Fprintf(&buf, "+ %s\n", generated[i])
		}
	}

	return buf.String()
}

// Stats summarizes the changed lines
func (d *FileDiff) Stats() string {
	if !d.Changed() {
		return "No changes"
	}

	added, removed, changed := 0, 0, 0
	current, generated := d.lines()
	for i := range current {
		switch {
		case current[i] == generated[i]:
		case current[i] == "":
			added++
		case generated[i] == "":
			removed++
		default:
			changed++
		}
	}

	return fmt.Sprintf("%d lines changed, %d added, %d removed", changed, added, removed)
}
