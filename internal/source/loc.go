package source

import (
	"fmt"
	"strconv"
	"strings"
)

// Loc is an opaque program location attached to every IR statement.
// The verifier never inspects it beyond copying it into violations.
type Loc struct {
	File string `msgpack:"f,omitempty" json:"file,omitempty"`
	Line uint32 `msgpack:"l,omitempty" json:"line,omitempty"`
	Col  uint32 `msgpack:"c,omitempty" json:"col,omitempty"`
}

// NoLoc marks an absent location (e.g. a violation without a related event).
var NoLoc = Loc{}

// IsValid reports whether the location carries any information.
func (l Loc) IsValid() bool {
	return l.File != "" || l.Line != 0
}

func (l Loc) String() string {
	switch {
	case !l.IsValid():
		return "<unknown>"
	case l.Col == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
	}
}

// Less orders locations by file, then line, then column.
func (l Loc) Less(other Loc) bool {
	if l.File != other.File {
		return l.File < other.File
	}
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Col < other.Col
}

// ParseLoc разбирает "file:line[:col]". Имя файла может содержать ':' (пути Windows),
// поэтому числа снимаются с конца.
func ParseLoc(s string) (Loc, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoLoc, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return NoLoc, fmt.Errorf("invalid location %q: expected file:line[:col]", s)
	}
	nums := make([]uint32, 0, 2)
	i := len(parts) - 1
	for ; i > 0 && len(nums) < 2; i-- {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			break
		}
		nums = append(nums, uint32(n))
	}
	if len(nums) == 0 {
		return NoLoc, fmt.Errorf("invalid location %q: missing line number", s)
	}
	file := strings.Join(parts[:i+1], ":")
	if file == "" {
		return NoLoc, fmt.Errorf("invalid location %q: missing file", s)
	}
	loc := Loc{File: file}
	if len(nums) == 2 {
		loc.Line, loc.Col = nums[1], nums[0]
	} else {
		loc.Line = nums[0]
	}
	return loc, nil
}
