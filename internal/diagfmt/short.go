package diagfmt

import (
	"io"

	"ownck/internal/diag"
)

// Short writes one line per diagnostic, the same text golden files use.
func Short(w io.Writer, bag *diag.Bag, includeNotes bool) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(w, diag.FormatShortDiagnostics(bag.Items(), includeNotes)+"\n")
	return err
}
