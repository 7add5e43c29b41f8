package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ownck/internal/diag"
)

// Pretty форматирует диагностики в человекочитаемый вид, в порядке
// обнаружения:
//
//	<path>:<line>[:<col>]: <SEV> <CODE>: <Message>
//	    <path>:<line>: note: <Message>
//
// Колонка местоположений выравнивается по самой широкой. Цвет включается
// опцией.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	p := newPalette(opts.Color)
	items := bag.Items()

	locs := make([]string, len(items))
	width := 0
	for i := range items {
		locs[i] = formatLoc(items[i].Primary, opts.PathMode, opts.BaseDir)
		width = max(width, runewidth.StringWidth(locs[i]))
	}

	for i := range items {
		d := &items[i]
		head := fmt.Sprintf("%s: %s %s: ",
			p.loc.Sprint(runewidth.FillRight(locs[i], width)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()))
		fmt.Fprintln(w, head+clip(d.Message, opts.Width, width+len(d.Severity.String())+len(d.Code.ID())+5))

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s%s: %s %s\n",
				strings.Repeat(" ", 4),
				p.loc.Sprint(formatLoc(n.Loc, opts.PathMode, opts.BaseDir)),
				p.note.Sprint("note:"),
				n.Msg)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "%s %d more diagnostic(s) not shown\n", p.note.Sprint("..."), dropped)
	}
}

// clip truncates msg so that the whole line fits in limit columns.
func clip(msg string, limit, used int) string {
	if limit <= 0 {
		return msg
	}
	room := limit - used
	if room <= 3 {
		return msg
	}
	if runewidth.StringWidth(msg) <= room {
		return msg
	}
	return runewidth.Truncate(msg, room, "...")
}

type palette struct {
	loc  *color.Color
	code *color.Color
	note *color.Color
	err  *color.Color
	warn *color.Color
	info *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		loc:  color.New(color.Bold),
		code: color.New(color.FgHiBlack),
		note: color.New(color.FgCyan),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.loc, p.code, p.note, p.err, p.warn, p.info} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}
