package source

import "testing"

func TestParseLoc(t *testing.T) {
	tests := []struct {
		in   string
		want Loc
		err  bool
	}{
		{in: "main.src:3:7", want: Loc{File: "main.src", Line: 3, Col: 7}},
		{in: "main.src:12", want: Loc{File: "main.src", Line: 12}},
		{in: `C:\work\a.src:4:1`, want: Loc{File: `C:\work\a.src`, Line: 4, Col: 1}},
		{in: "", want: NoLoc},
		{in: "main.src", err: true},
		{in: ":3", err: true},
		{in: "a:b", err: true},
	}
	for _, tt := range tests {
		got, err := ParseLoc(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("ParseLoc(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLoc(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLoc(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestLocString(t *testing.T) {
	if s := (Loc{File: "a", Line: 2, Col: 3}).String(); s != "a:2:3" {
		t.Errorf("got %q", s)
	}
	if s := (Loc{File: "a", Line: 2}).String(); s != "a:2" {
		t.Errorf("got %q", s)
	}
	if s := NoLoc.String(); s != "<unknown>" {
		t.Errorf("got %q", s)
	}
}

func TestLocLess(t *testing.T) {
	a := Loc{File: "a", Line: 2, Col: 9}
	b := Loc{File: "a", Line: 3, Col: 1}
	c := Loc{File: "b", Line: 1}
	if !a.Less(b) || !b.Less(c) || c.Less(a) {
		t.Fatal("unexpected ordering")
	}
}
