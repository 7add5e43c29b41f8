package diag

import (
	"ownck/internal/source"
)

type Note struct {
	Loc source.Loc `msgpack:"loc"`
	Msg string     `msgpack:"msg"`
}

type Diagnostic struct {
	Severity Severity   `msgpack:"sev"`
	Code     Code       `msgpack:"code"`
	Message  string     `msgpack:"msg"`
	Primary  source.Loc `msgpack:"at"`
	Notes    []Note     `msgpack:"notes,omitempty"`
}

func New(sev Severity, code Code, primary source.Loc, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Loc, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc source.Loc, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
