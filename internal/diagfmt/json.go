package diagfmt

import (
	"encoding/json"
	"io"

	"ownck/internal/diag"
	"ownck/internal/source"
)

// LocationJSON представляет местоположение для JSON
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

func makeLocation(loc source.Loc, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File: formatPath(loc.File, opts.PathMode, opts.BaseDir),
		Line: loc.Line,
		Col:  loc.Col,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	if bag == nil {
		return DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	}
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}

	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, n),
		Dropped:     bag.Dropped() + len(items) - n,
	}
	for i := range n {
		d := items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, opts),
		}
		if (opts.IncludeNotes || d.Code == diag.ObsTimings) && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Loc, opts)}
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, opts))
}
