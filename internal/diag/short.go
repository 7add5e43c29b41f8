package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatShortDiagnostics renders diagnostics one per line in discovery order:
//
//	<severity> <CODE> <path>:<line>[:<col>] <message>
//
// Notes follow their diagnostic as "note" lines when includeNotes is set.
// The output is stable for identical input and is used for golden files.
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			severityLabel(d.Severity), d.Code.ID(), normalizePath(d.Primary.String()), sanitizeMessage(d.Message)))
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			lines = append(lines, fmt.Sprintf("note %s %s %s",
				d.Code.ID(), normalizePath(note.Loc.String()), sanitizeMessage(note.Msg)))
		}
	}
	return strings.Join(lines, "\n")
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
